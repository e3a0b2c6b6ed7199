package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saransh482003/healthassist/internal/finder"
)

var (
	findLat       float64
	findLon       float64
	findSpecialty string
	findRadius    int
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Run one doctor discovery pass and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initService(ctx, "find")
		if err != nil {
			return err
		}
		defer env.Close()

		if findRadius == 0 {
			findRadius = cfg.Places.RadiusMeters
		}

		report, err := env.Finder.FindDoctors(ctx, finder.Request{
			Latitude:  findLat,
			Longitude: findLon,
			Specialty: findSpecialty,
			Radius:    findRadius,
		})
		if err != nil {
			return eris.Wrap(err, "find doctors")
		}

		doctors := 0
		for _, pr := range report {
			doctors += len(pr.Doctors)
		}
		zap.L().Info("discovery complete",
			zap.Int("places", len(report)),
			zap.Int("doctors", doctors),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	findCmd.Flags().Float64Var(&findLat, "lat", 0, "latitude of the search center")
	findCmd.Flags().Float64Var(&findLon, "lon", 0, "longitude of the search center")
	findCmd.Flags().StringVar(&findSpecialty, "specialty", "", "doctor specialty to search for")
	findCmd.Flags().IntVar(&findRadius, "radius", 0, "search radius in meters (default from config)")
	_ = findCmd.MarkFlagRequired("lat")
	_ = findCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(findCmd)
}
