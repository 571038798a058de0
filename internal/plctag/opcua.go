package plctag

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"
)

// OPCUAConfig - параметры доступа к тегам через шлюз OPC UA
type OPCUAConfig struct {
	Port            int    `yaml:"port"`
	Namespace       int    `yaml:"namespace"`
	SecurityMode    string `yaml:"security_mode"`
	SecurityPolicy  string `yaml:"security_policy"`
	ApplicationName string `yaml:"application_name"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
}

func (c *OPCUAConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 4840
	}
	if c.Namespace == 0 {
		c.Namespace = 2
	}
	if c.SecurityMode == "" {
		c.SecurityMode = "None"
	}
	if c.SecurityPolicy == "" {
		c.SecurityPolicy = "None"
	}
	if c.ApplicationName == "" {
		c.ApplicationName = "PLC Tag Gateway"
	}
}

// OPCUADriver читает теги контроллера через OPC UA сервер, опубликованный на адресе шлюза.
// Значение узла раскладывается в тот же формат буфера, что и у нативного протокола.
type OPCUADriver struct {
	cfg OPCUAConfig
}

func NewOPCUADriver(cfg OPCUAConfig) *OPCUADriver {
	cfg.ApplyDefaults()
	return &OPCUADriver{cfg: cfg}
}

func (d *OPCUADriver) NewTag(spec Spec) (Tag, error) {
	if spec.Name == "" {
		return nil, errors.New("tag name is required")
	}
	if spec.Gateway == "" {
		return nil, errors.New("gateway is required")
	}
	return &opcuaTag{
		cfg:      d.cfg,
		spec:     spec,
		endpoint: "opc.tcp://" + net.JoinHostPort(spec.Gateway, strconv.Itoa(d.cfg.Port)),
		nodeID:   nodeIDFor(spec.Name, d.cfg.Namespace),
	}, nil
}

// nodeIDFor строит идентификатор узла; готовые идентификаторы передаются как есть
func nodeIDFor(tagName string, namespace int) string {
	for _, prefix := range []string{"ns=", "i=", "s=", "g=", "b="} {
		if strings.HasPrefix(tagName, prefix) {
			return tagName
		}
	}
	return fmt.Sprintf("ns=%d;s=%s", namespace, tagName)
}

type opcuaTag struct {
	cfg      OPCUAConfig
	spec     Spec
	endpoint string
	nodeID   string

	mu     sync.Mutex
	client *opcua.Client
	buf    []byte
	closed bool
}

func (t *opcuaTag) Initialize(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	client, err := opcua.NewClient(t.endpoint, t.clientOptions()...)
	if err != nil {
		return fmt.Errorf("opcua new client %s: %w", t.endpoint, err)
	}
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("opcua connect %s: %w", t.endpoint, err)
	}
	t.client = client
	return nil
}

func (t *opcuaTag) Read(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if t.client == nil {
		return ErrNotReady
	}

	id, err := ua.ParseNodeID(t.nodeID)
	if err != nil {
		return fmt.Errorf("parse node id %q: %w", t.nodeID, err)
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	resp, err := t.client.Read(ctx, &ua.ReadRequest{
		NodesToRead: []*ua.ReadValueID{
			{NodeID: id, AttributeID: ua.AttributeIDValue},
		},
		TimestampsToReturn: ua.TimestampsToReturnNeither,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrTimeout, t.nodeID)
		}
		return fmt.Errorf("opcua read %s: %w", t.nodeID, err)
	}
	if len(resp.Results) == 0 {
		return fmt.Errorf("opcua read %s: empty result", t.nodeID)
	}
	result := resp.Results[0]
	if result.Status != ua.StatusOK {
		if result.Status == ua.StatusBadNodeIDUnknown {
			return fmt.Errorf("%w: %s", ErrNotFound, t.nodeID)
		}
		return fmt.Errorf("opcua read %s failed: %s", t.nodeID, result.Status)
	}
	if result.Value == nil {
		return fmt.Errorf("opcua read %s: empty value", t.nodeID)
	}

	buf, err := Encode(result.Value.Value())
	if err != nil {
		return fmt.Errorf("opcua read %s: %w", t.nodeID, err)
	}
	t.buf = buf
	return nil
}

func (t *opcuaTag) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}

func (t *opcuaTag) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]byte, len(t.buf))
	copy(out, t.buf)
	return out
}

func (t *opcuaTag) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.buf = nil
	if t.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := t.client.Close(ctx)
	t.client = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (t *opcuaTag) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.spec.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.spec.Timeout)
}

func (t *opcuaTag) clientOptions() []opcua.Option {
	opts := []opcua.Option{
		opcua.SecurityModeString(t.cfg.SecurityMode),
		opcua.SecurityPolicy(t.cfg.SecurityPolicy),
		opcua.ApplicationName(t.cfg.ApplicationName),
	}
	if t.spec.Timeout > 0 {
		opts = append(opts, opcua.RequestTimeout(t.spec.Timeout))
	}
	if t.cfg.Username != "" {
		opts = append(opts, opcua.AuthUsername(t.cfg.Username, t.cfg.Password))
	} else {
		opts = append(opts, opcua.AuthAnonymous())
	}
	return opts
}

var _ Driver = (*OPCUADriver)(nil)
