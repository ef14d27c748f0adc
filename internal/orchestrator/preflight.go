package orchestrator

import (
	"fmt"
	"os"

	"github.com/netascode/nac-test-go/internal/errs"
)

const preflightSubsystem = "orchestrator.preflight"

// recognizedControllerTags lists every <CT> prefix §6 recognizes for the
// <CT>_URL/<CT>_USERNAME/<CT>_PASSWORD environment triple.
var recognizedControllerTags = []string{"ACI", "SDWAN", "CC", "MERAKI", "FMC", "ISE"}

// ControllerCredentials is one controller's resolved connection info.
type ControllerCredentials struct {
	Type     string
	URL      string
	Username string
	Password string
}

// Preflight validates controller credentials before any test runs. If
// CONTROLLER_TYPE is set, only that controller's triple is checked;
// otherwise every recognized tag is probed and the first one with all
// three variables set wins. When nothing validates it returns a
// ConfigurationError: with CONTROLLER_TYPE set, it names that controller's
// missing variables; otherwise it names the generic
// <CT>_URL/<CT>_USERNAME/<CT>_PASSWORD triple.
func Preflight(getenv func(string) string) (ControllerCredentials, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if tag := getenv("CONTROLLER_TYPE"); tag != "" {
		creds, missing := credentialsFor(getenv, tag)
		if len(missing) > 0 {
			return ControllerCredentials{}, configurationError(tag, missing)
		}
		return creds, nil
	}

	for _, tag := range recognizedControllerTags {
		creds, missing := credentialsFor(getenv, tag)
		if len(missing) == 0 {
			return creds, nil
		}
	}

	return ControllerCredentials{}, errs.New(errs.ConfigurationError,
		"no controller credentials detected; set CONTROLLER_TYPE and the matching <CT>_URL/<CT>_USERNAME/<CT>_PASSWORD triple", nil)
}

func credentialsFor(getenv func(string) string, tag string) (ControllerCredentials, []string) {
	url := getenv(tag + "_URL")
	user := getenv(tag + "_USERNAME")
	pass := getenv(tag + "_PASSWORD")

	var missing []string
	if url == "" {
		missing = append(missing, tag+"_URL")
	}
	if user == "" {
		missing = append(missing, tag+"_USERNAME")
	}
	if pass == "" {
		missing = append(missing, tag+"_PASSWORD")
	}

	return ControllerCredentials{Type: tag, URL: url, Username: user, Password: pass}, missing
}

func configurationError(tag string, missing []string) error {
	return errs.New(errs.ConfigurationError, fmt.Sprintf("controller %s missing required variable(s): %v", tag, missing), nil)
}
