package services

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/domain/errs"
)

// MaxEndpointNameLength - предельная длина имени контроллера
const MaxEndpointNameLength = 100

// EndpointValidator проверяет параметры подключения к контроллеру
type EndpointValidator struct{}

func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{}
}

// IsValidName: непустое имя не длиннее 100 символов
func (v *EndpointValidator) IsValidName(name string) bool {
	return strings.TrimSpace(name) != "" && len([]rune(name)) <= MaxEndpointNameLength
}

// IsValidAddress: литерал IPv4 или IPv6
func (v *EndpointValidator) IsValidAddress(address string) bool {
	_, err := netip.ParseAddr(strings.TrimSpace(address))
	return err == nil
}

// IsValidPath: два неотрицательных целых через запятую, например "1,0"
func (v *EndpointValidator) IsValidPath(path string) bool {
	parts := strings.Split(path, ",")
	if len(parts) != 2 {
		return false
	}
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return false
		}
	}
	return true
}

func (v *EndpointValidator) IsValidTimeout(timeoutSeconds int) bool {
	return timeoutSeconds > 0
}

func (v *EndpointValidator) IsValidProtocol(p entities.Protocol) bool {
	switch p {
	case entities.ProtocolEIP, entities.ProtocolModbusTCP, entities.ProtocolOPCUA:
		return true
	}
	return false
}

func (v *EndpointValidator) IsValidPlcType(t entities.PlcType) bool {
	switch t {
	case entities.PlcControlLogix, entities.PlcMicro800, entities.PlcMicroLogix,
		entities.PlcPLC5, entities.PlcSLC500, entities.PlcOmronNJNX:
		return true
	}
	return false
}

// Validate проверяет все параметры и возвращает INVALID_CONFIGURATION на первом нарушении
func (v *EndpointValidator) Validate(name, address, path string, timeoutSeconds int) error {
	const op = "validate"
	if !v.IsValidName(name) {
		return errs.New(errs.CodeInvalidConfiguration, op, "PLCName is invalid or too long")
	}
	if !v.IsValidAddress(address) {
		return errs.New(errs.CodeInvalidConfiguration, op, "Gateway '%s' is not a valid IP address", address)
	}
	if !v.IsValidPath(path) {
		return errs.New(errs.CodeInvalidConfiguration, op, "Path '%s' is invalid. Format: x,y", path)
	}
	if !v.IsValidTimeout(timeoutSeconds) {
		return errs.New(errs.CodeInvalidConfiguration, op, "TimeoutSeconds must be greater than 0")
	}
	return nil
}

// ValidateConfig дополнительно проверяет протокол и семейство контроллера
func (v *EndpointValidator) ValidateConfig(cfg entities.EndpointConfig) error {
	if err := v.Validate(cfg.Name, cfg.Address, cfg.Path, cfg.TimeoutSeconds); err != nil {
		return err
	}
	if !v.IsValidProtocol(cfg.Protocol) {
		return errs.New(errs.CodeInvalidConfiguration, "validate", "Protocol '%s' is not supported", cfg.Protocol)
	}
	if !v.IsValidPlcType(cfg.PlcType) {
		return errs.New(errs.CodeInvalidConfiguration, "validate", "PlcType '%s' is not supported", cfg.PlcType)
	}
	return nil
}
