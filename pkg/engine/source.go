package engine

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mppkit/mppconvert/pkg/bridge"
	"github.com/mppkit/mppconvert/pkg/config"
	"github.com/mppkit/mppconvert/pkg/schedule"
)

// Source reads a schedule file into a task dump. The returned trace is
// the reader's diagnostic output and may be set on failure.
type Source interface {
	Read(ctx context.Context, path string) (dump *schedule.Dump, trace string, err error)
}

// BridgeSource reads .json dumps directly and everything else through a
// JVM runtime opened for the read and closed before returning.
type BridgeSource struct {
	Config config.BridgeConfig
}

func (s BridgeSource) Read(ctx context.Context, path string) (*schedule.Dump, string, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		d, err := bridge.ReadFile(path)
		return d, "", err
	}

	rt, err := bridge.Open(ctx, s.Config)
	if err != nil {
		return nil, "", err
	}
	defer rt.Close()

	d, err := rt.Read(ctx, path)
	return d, rt.Trace(), err
}
