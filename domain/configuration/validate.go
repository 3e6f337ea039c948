package configuration

import (
	"errors"
	"fmt"
	"strings"

	"datalens/domain/core"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and enumerations. Violations are returned as a
// single ErrInvalidConfiguration listing every offending field.
func (c *AnalysisConfiguration) Validate() error {
	if c.SchemaVersion > SchemaVersion {
		return core.NewInvalidConfigurationError(
			fmt.Sprintf("schema version %d is newer than supported version %d", c.SchemaVersion, SchemaVersion))
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return core.NewInvalidConfigurationError(err.Error())
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag()))
		}
	}
	return core.NewInvalidConfigurationError(strings.Join(problems, "; "))
}
