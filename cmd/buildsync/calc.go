package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/buildsync"
	"github.com/aretw0/buildsync/internal/presentation"
	"github.com/aretw0/buildsync/pkg/adapters/localengine"
	"github.com/aretw0/buildsync/pkg/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var calcCmd = &cobra.Command{
	Use:   "calc [build-code]",
	Short: "Calculate a build once and print its output",
	Long: `Boots a session, imports the build, applies the requested config options and
prints the resulting output. The build is read from the argument, from --file
(a build code, or raw build XML when the file ends in .xml) or from the
build_code config key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		sets, _ := cmd.Flags().GetStringArray("set")
		asJSON, _ := cmd.Flags().GetBool("json")
		showInfo, _ := cmd.Flags().GetBool("info")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		code, err := buildCode(args, path)
		if err != nil {
			return err
		}
		if code != "" {
			a.cfg.BuildCode = code
		}
		if a.cfg.BuildCode == "" {
			return fmt.Errorf("no build given: pass a build code, --file or set build_code")
		}

		sess, err := a.newSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		var (
			mu   sync.Mutex
			last *domain.Outputs
		)
		onOutput := func(out domain.Outputs) {
			mu.Lock()
			defer mu.Unlock()
			last = &out
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		if err := a.start(ctx, sess, onOutput, nil); err != nil {
			return err
		}

		for _, set := range sets {
			key, value, err := parseSet(set)
			if err != nil {
				return err
			}
			if err := sess.SetConfigOption(ctx, key, value); err != nil {
				return fmt.Errorf("--set %s: %w", set, err)
			}
		}
		// Importing does not recalculate; every --set already ticked.
		if len(sets) == 0 {
			if err := sess.Tick(ctx, "calc"); err != nil {
				return err
			}
		}

		mu.Lock()
		out := last
		mu.Unlock()
		if out == nil {
			return fmt.Errorf("the build produced no output (is its main socket group set?)")
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		r := presentation.NewRenderer(cmd.OutOrStdout())
		if r.Styled() {
			r.Heading("buildsync " + strings.TrimSpace(buildsync.Version))
		}
		if showInfo {
			info, err := sess.BuildInfo(ctx)
			if err != nil {
				return err
			}
			if err := r.Info(info); err != nil {
				return err
			}
		}
		return r.Outputs(*out)
	},
}

// buildCode returns the build code from the argument or the file at path.
func buildCode(args []string, path string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read build: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return localengine.CompressEncode(string(data))
	}
	return strings.TrimSpace(string(data)), nil
}

// parseSet splits key=value. The value is read as a YAML scalar so that
// true, 3 and Pinnacle become a bool, a number and a string.
func parseSet(raw string) (string, any, error) {
	key, text, ok := strings.Cut(raw, "=")
	if !ok || key == "" {
		return "", nil, fmt.Errorf("--set %q: expected key=value", raw)
	}

	var value any
	if err := yaml.Unmarshal([]byte(text), &value); err != nil {
		return "", nil, fmt.Errorf("--set %q: %w", raw, err)
	}
	switch value.(type) {
	case bool, int, float64, string, nil:
	default:
		value = text
	}
	return key, value, nil
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().StringP("file", "f", "", "Read the build from a file")
	calcCmd.Flags().StringArray("set", nil, "Set a config option (key=value), repeatable")
	calcCmd.Flags().Bool("json", false, "Print the output as JSON")
	calcCmd.Flags().Bool("info", false, "Also print module and engine details")
}
