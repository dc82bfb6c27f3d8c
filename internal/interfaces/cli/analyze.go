package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/config"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	"github.com/marketgap-io/marketgap/internal/infrastructure/snapshot"
)

func newAnalyzeCommand(configPath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the gap analysis offline and dump it as JSON",
		Long: "analyze builds a snapshot from the configured dataset, runs the " +
			"full per-zip gap analysis, and writes the result to a file or stdout.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logging.NewLogger(logging.Config{
				Level:       "warn",
				Format:      cfg.Log.Format,
				OutputPaths: []string{"stderr"},
			})
			if err != nil {
				return err
			}

			source := snapshot.FileSource{Path: cfg.Snapshot.Path, State: cfg.Snapshot.State}
			records, err := source.Load(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := analysis.NewBuilder(cfg.BuildConfig(), log).Build(records)
			if err != nil {
				return err
			}

			dump := buildDump(snap)
			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(dump)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

type zipDump struct {
	Zip              string      `json:"zip"`
	City             string      `json:"city"`
	OpportunityScore float64     `json:"opportunity_score"`
	Risk             string      `json:"risk"`
	ClosureRate      float64     `json:"closure_rate"`
	TotalRestaurants int         `json:"total_restaurants"`
	TotalReviews     int         `json:"total_reviews"`
	NeighborCount    int         `json:"neighbor_count"`
	CuisineGaps      interface{} `json:"cuisine_gaps"`
	AttributeGaps    interface{} `json:"attribute_gaps"`
}

func buildDump(snap *analysis.Snapshot) map[string]interface{} {
	zips := make([]zipDump, 0, snap.TotalAnalyzed())
	for _, zip := range snap.Zips() {
		a, _ := snap.Analysis(zip)
		zips = append(zips, zipDump{
			Zip:              zip,
			City:             a.Market.City,
			OpportunityScore: a.Opportunity.Score,
			Risk:             string(a.Opportunity.Risk),
			ClosureRate:      a.Market.ClosureRate,
			TotalRestaurants: a.Market.TotalRestaurants,
			TotalReviews:     a.Market.TotalReviews,
			NeighborCount:    a.NeighborCount,
			CuisineGaps:      a.CuisineGaps,
			AttributeGaps:    a.AttributeGaps,
		})
	}
	return map[string]interface{}{
		"build_id":      snap.BuildID.String(),
		"built_at":      snap.BuiltAt,
		"records":       snap.RecordCount,
		"zips_analyzed": snap.TotalAnalyzed(),
		"zips":          zips,
	}
}
