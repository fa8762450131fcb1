package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"supertube/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid configuration: %s", v.Errors.One())
	}
	if cv.conf.Refresh.Quota.SafetyThreshold > 1 {
		return fmt.Errorf("invalid configuration: quota safety threshold must be <= 1.0, got %v", cv.conf.Refresh.Quota.SafetyThreshold)
	}
	return nil
}
