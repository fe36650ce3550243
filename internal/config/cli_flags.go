package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Emit logs in JSON format")
	cmd.PersistentFlags().String("token", "", "Base64 API token for the rendering proxy (overrides keyring)")
	cmd.PersistentFlags().String("api-url", "", "Rendering proxy endpoint URL")
	cmd.PersistentFlags().String("proxy", "", "Outbound HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", "120s", "Hard timeout for a single page render")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string (local engine)")
}
