package usecases

import (
	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
)

type PollingUsecase struct {
	pollSvc interfaces.PollingService
}

func NewPollingUsecase(pollSvc interfaces.PollingService) interfaces.PollingUsecase {
	return &PollingUsecase{pollSvc: pollSvc}
}

func (u *PollingUsecase) StartPolling(req entities.PollingRequest) (entities.PollInfo, error) {
	return u.pollSvc.StartPolling(req)
}

func (u *PollingUsecase) StopPolling(endpoint string) error {
	return u.pollSvc.StopPolling(endpoint)
}

func (u *PollingUsecase) ActivePolls() []entities.PollInfo {
	return u.pollSvc.ActivePolls()
}
