package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zhubert/reword/internal/config"
	"github.com/zhubert/reword/internal/credential"
	"github.com/zhubert/reword/internal/ui"
)

var keyProvider string

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage provider API keys",
	Long: `Manage the API keys stored in ~/.reword/credentials.yaml.

Environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY) take precedence
over stored keys.`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [api-key]",
	Short: "Save an API key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKeySet,
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured API key, masked",
	Args:  cobra.NoArgs,
	RunE:  runKeyShow,
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove a saved API key",
	Args:  cobra.NoArgs,
	RunE:  runKeyClear,
}

func init() {
	keyCmd.PersistentFlags().StringVar(&keyProvider, "provider", "", "provider the key belongs to (defaults to the configured provider)")
	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyClearCmd)
	rootCmd.AddCommand(keyCmd)
}

// keyTarget returns the store and the provider a key command acts on.
func keyTarget() (*credential.Store, string, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, "", err
	}
	name := strings.ToLower(keyProvider)
	if name == "" {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("getting working directory: %w", err)
		}
		cfg, err := config.Load(workDir)
		if err != nil {
			return nil, "", err
		}
		name = cfg.Provider
	}
	return credential.NewStore(dir), name, nil
}

func runKeySet(cmd *cobra.Command, args []string) error {
	store, name, err := keyTarget()
	if err != nil {
		return err
	}

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		key, err = promptKey(cmd, name)
		if err != nil {
			return err
		}
	}

	if err := store.Set(name, key); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render(fmt.Sprintf("Saved %s key to %s", name, store.Path())))
	return nil
}

// promptKey reads a key without echo on a terminal, or a line otherwise.
func promptKey(cmd *cobra.Command, name string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprintf(cmd.OutOrStdout(), "Enter %s API key: ", name)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runKeyShow(cmd *cobra.Command, _ []string) error {
	store, name, err := keyTarget()
	if err != nil {
		return err
	}

	key, src, err := store.Resolve(name)
	if errors.Is(err, credential.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s key configured.\n", name)
		return nil
	}
	if err != nil {
		return err
	}

	where := store.Path()
	if src == credential.SourceEnv {
		where = credential.EnvVar(name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", name, credential.Mask(key), ui.DimStyle.Render(where))
	return nil
}

func runKeyClear(cmd *cobra.Command, _ []string) error {
	store, name, err := keyTarget()
	if err != nil {
		return err
	}
	if err := store.Clear(name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed saved %s key.\n", name)
	if env := credential.EnvVar(name); env != "" && os.Getenv(env) != "" {
		fmt.Fprintln(cmd.OutOrStdout(), ui.WarnStyle.Render(env+" is still set in the environment."))
	}
	return nil
}
