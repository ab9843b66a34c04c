package cli

import (
	"fmt"

	"github.com/frontand-tech/frontand/internal/initialization"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewServicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "List OAuth service providers",
		Long:  `Display the OAuth provider catalog and whether each provider has a client id configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServices()
		},
	}

	return cmd
}

func runServices() error {
	config, err := initialization.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	for _, service := range initialization.ServiceCatalog(config) {
		state := "not configured"
		if service.ClientID != "" {
			state = "configured"
		}

		refresh := ""
		if service.RequiresRefresh {
			refresh = ", refresh"
		}

		fmt.Printf("%-10s %-10s (%s%s)\n", service.ID, state, service.AuthURL, refresh)
	}

	return nil
}
