package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademaro/fiphunt/internal/config"
	"github.com/ademaro/fiphunt/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "fiphunt",
	Short: "Race the cloud for a floating IP in a target range",
	Long: `Fiphunt races the OpenStack floating-IP allocator with a pool of
concurrent workers until one of them acquires an address inside the
configured CIDR ranges, binds it to the target server and confirms the
binding. Every address outside the ranges is released immediately.`,
}

// errNoWin marks a hunt that exhausted its cycles without acquiring a
// target address. It maps to exit code 1, as distinct from exit code 2 for
// interrupts and operational errors.
var errNoWin = errors.New("hunt ended without a win")

// errInterrupted marks a hunt ended by an external interrupt. Like
// operational errors it maps to exit code 2; exit 1 is reserved for a hunt
// that ran out of cycles on its own.
var errInterrupted = errors.New("hunt interrupted")

// Execute runs the root command and maps the outcome to a process exit
// code: 0 for a win, 1 for a hunt that ended empty-handed, 2 for
// interrupts and errors.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errNoWin) && !errors.Is(err, errInterrupted) {
		fmt.Fprintf(os.Stderr, "fiphunt: %v\n", err)
	}
	return exitCode(err)
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errInterrupted):
		return 2
	case errors.Is(err, errNoWin):
		return 1
	default:
		return 2
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is "+config.ConfigFile()+")")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Credentials are commonly kept in a .env file next to the binary;
	// load it into the environment before viper reads it. Missing file is
	// fine.
	_ = godotenv.Load()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/fiphunt")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FIPHUNT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., FIPHUNT_AUTH_PASSWORD for auth.password
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
