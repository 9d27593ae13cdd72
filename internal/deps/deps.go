package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/ChickenNuggetsK/GTRadio/internal/config"
)

// Requirement defines an external tool the pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of one requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig lists the tools the given configuration would invoke. The
// extractor is optional in manual mode: pre-extracted input never shells
// out to it.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "rpf-cli",
			Command:     cfg.RPFCLIBinary,
			Description: "Unpacks RAGE package archives",
			Optional:    cfg.ManualMode(),
		},
		{
			Name:        "vgmstream-cli",
			Command:     cfg.VGMStreamBinary,
			Description: "Decodes raw audio containers to RIFF WAVE",
		},
	}
}

// CheckBinaries resolves each requirement on PATH and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		statuses[i] = req.check()
	}
	return statuses
}

func (r Requirement) check() Status {
	status := Status{
		Name:        r.Name,
		Command:     strings.TrimSpace(r.Command),
		Description: strings.TrimSpace(r.Description),
		Optional:    r.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	if _, err := exec.LookPath(status.Command); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Available = true
	return status
}

// MissingRequired filters statuses down to required tools that are absent.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, status)
		}
	}
	return missing
}
