// Package originselect decides which HireHub API a CLI command talks to.
package originselect

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/hirehub/console/internal/cli/config"
	"github.com/hirehub/console/internal/cli/userconfig"
)

// promptSelection is replaced in tests
var promptSelection = PromptOriginSelection

// ResolveOrigin determines which API base URL to use based on the following priority:
// 1. If the --origin flag is provided, use it (an alias or URL from the project file, or any URL)
// 2. Without a project file, use fallback (CONSOLE_API_URL)
// 3. If the user selected an origin for this project file before, use that
// 4. If only one origin in project config, use that
// 5. Otherwise, prompt user to select an origin interactively
func ResolveOrigin(projectConfig *config.Config, flag, fallback string) (string, error) {
	// Priority 1: explicit flag
	if flag != "" {
		if projectConfig != nil {
			if origin, err := projectConfig.Find(flag); err == nil {
				return origin.URL, nil
			}
		}
		if strings.Contains(flag, "://") {
			return strings.TrimRight(flag, "/"), nil
		}
		return "", fmt.Errorf("origin '%s' is neither a URL nor an alias in %s", flag, config.ConfigFileName)
	}

	// Priority 2: no project file
	if projectConfig == nil || len(projectConfig.Origins) == 0 {
		return fallback, nil
	}

	// Priority 3: Use selected origin from user config
	selected, err := userconfig.SelectedOrigin(projectConfig.Path)
	if err != nil {
		return "", fmt.Errorf("failed to load user config: %w", err)
	}

	if selected != "" {
		origin, err := projectConfig.Find(selected)
		if err == nil {
			return origin.URL, nil
		}
		// Selected origin no longer exists in project config, clear it and continue
		_ = userconfig.SelectOrigin(projectConfig.Path, "")
	}

	// Priority 4: If only one origin, use it automatically
	if len(projectConfig.Origins) == 1 {
		origin := projectConfig.Origins[0]
		remember(projectConfig.Path, origin.URL)
		return origin.URL, nil
	}

	// Priority 5: Prompt user to select an origin
	origin, err := promptSelection(projectConfig)
	if err != nil {
		return "", err
	}

	remember(projectConfig.Path, origin.URL)
	return origin.URL, nil
}

// remember saves the selection; failing to save is not fatal
func remember(projectFile, url string) {
	if err := userconfig.SelectOrigin(projectFile, url); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save selected origin: %v\n", err)
	}
}

// PromptOriginSelection shows an interactive prompt for the user to select an origin
func PromptOriginSelection(projectConfig *config.Config) (*config.Origin, error) {
	if len(projectConfig.Origins) == 0 {
		return nil, fmt.Errorf("no origins configured in %s", config.ConfigFileName)
	}

	type originOption struct {
		Label  string
		Origin *config.Origin
	}

	options := make([]originOption, len(projectConfig.Origins))
	for i := range projectConfig.Origins {
		origin := &projectConfig.Origins[i]
		options[i] = originOption{
			Label:  origin.Label(),
			Origin: origin,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select an API origin",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("origin selection cancelled: %w", err)
	}

	return options[index].Origin, nil
}
