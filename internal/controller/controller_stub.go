//go:build !windows

package controller

import (
	"go.uber.org/zap"

	"github.com/mj1618/wintheme/internal/model"
)

type stubController struct{}

// New returns a backend that rejects every operation; injection only
// exists on Windows.
func New(*zap.Logger) Controller {
	return stubController{}
}

func (stubController) Inject(InjectOptions) (*InjectResult, error) {
	return nil, ErrUnsupported
}

func (stubController) SetMode(string, model.Mode) error {
	return ErrUnsupported
}

func (stubController) Status(string) (*Status, error) {
	return nil, ErrUnsupported
}
