package main

import (
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"catalogsite/internal/app"
	redisx "catalogsite/internal/redis"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild index snapshots from the CMS",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringSliceP("locale", "l", nil, "locales to rebuild (default: all supported)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	locales, _ := cmd.Flags().GetStringSlice("locale")
	if len(locales) == 0 {
		locales = cfg.SupportedLocales
	}

	// The cache is refreshed when redis is reachable; snapshots do not need it.
	var redisClient *redis.Client
	if client, err := redisx.New(cfg.RedisURL); err != nil {
		log.Printf("redis unavailable, skipping cache refresh: %v", err)
	} else {
		redisClient = client
		defer client.Close()
	}

	svc, _ := app.NewIndexService(cfg, app.NewCMSClient(cfg), db, redisClient)
	built, err := svc.Rebuild(cmd.Context(), locales)
	if perr := printJSON(cmd.OutOrStdout(), built); perr != nil {
		return perr
	}
	return err
}
