package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wonny/allocator/internal/engineconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "엔진 설정 관리",
	Long: `엔진 파라미터(YAML)를 검증하거나 출력합니다.

Example:
  go run ./cmd/allocator config check --engine-config config/engine.yaml
  go run ./cmd/allocator config show`,
}

var (
	configCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "설정 파일 검증",
		RunE:  runConfigCheck,
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "적용될 설정 출력 (YAML)",
		RunE:  runConfigShow,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configShowCmd)
}

// resolveEngineConfigPath prefers the flag over $ENGINE_CONFIG
func resolveEngineConfigPath() string {
	if engineConfigPath != "" {
		return engineConfigPath
	}
	return os.Getenv("ENGINE_CONFIG")
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := resolveEngineConfigPath()

	var cfg *engineconfig.Config
	if path == "" {
		PrintInfo("No engine config given, checking built-in defaults")
		cfg = engineconfig.Default()
		if err := engineconfig.Validate(cfg); err != nil {
			return err
		}
	} else {
		loaded, _, err := engineconfig.Load(path)
		if err != nil {
			PrintError(err.Error())
			return err
		}
		cfg = loaded
	}

	hash, err := engineconfig.Hash(cfg)
	if err != nil {
		return err
	}

	PrintHeader("Engine Config", path)
	PrintKeyValue("Profile", fmt.Sprintf("%s (v%s)", cfg.Meta.ProfileID, cfg.Meta.Version), 12)
	PrintKeyValue("Hash", hash[:16], 12)
	PrintKeyValue("Method", cfg.Optimizer.DefaultMethod, 12)
	PrintKeyValue("Bounds", fmt.Sprintf("%.0f%% ~ %.0f%%", cfg.Optimizer.MinAllocation*100, cfg.Optimizer.MaxAllocation*100), 12)
	PrintKeyValue("Watchlist", fmt.Sprintf("%d stocks", len(cfg.Watchlist)), 12)
	PrintKeyValue("Revalidate", orDisabled(cfg.Schedule.RevalidateCron), 12)
	PrintKeyValue("Warm cache", orDisabled(cfg.Schedule.WarmCacheCron), 12)
	fmt.Println()
	PrintSuccess("Engine config is valid")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := engineconfig.LoadOrDefault(resolveEngineConfigPath())
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func orDisabled(s string) string {
	if s == "" {
		return "disabled"
	}
	return s
}
