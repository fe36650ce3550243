package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/credentials"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/ui"
)

// tokenCmd groups the API-token management subcommands
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the rendering-API token",
	Long: `Stores the Base64 API token for the rendering proxy in the OS keyring
(with a file fallback under ~/.zillow-scraper in headless environments).`,
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the API token",
	Example: `  # Pass the token directly
  zillow-scraper token set 'dXNlcjpwYXNz...'

  # Or pipe it in to keep it out of shell history
  cat token.txt | zillow-scraper token set`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				token = strings.TrimSpace(scanner.Text())
			}
		}
		if token == "" {
			return fmt.Errorf("no token provided")
		}

		if err := credentials.SaveToken(token); err != nil {
			return err
		}
		fmt.Printf("%s Token stored (%s)\n", ui.Success("✓"), credentials.Redact(token))
		return nil
	},
}

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API token (redacted)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := credentials.LoadToken()
		if err != nil {
			return err
		}
		if token == "" {
			fmt.Println(ui.Warn("No token stored"))
			return nil
		}
		fmt.Println(credentials.Redact(token))
		return nil
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credentials.DeleteToken(); err != nil {
			return err
		}
		fmt.Printf("%s Token deleted\n", ui.Success("✓"))
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenShowCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
	rootCmd.AddCommand(tokenCmd)
}
