package main

import (
	"encoding/json"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/headwaters-lab/musselsim/internal/export"
	"github.com/headwaters-lab/musselsim/internal/gravity"
	"github.com/headwaters-lab/musselsim/internal/route"
	"github.com/headwaters-lab/musselsim/internal/sim"
)

var (
	simSitesPath    string
	simCountiesPath string
	simOutDir       string
	simName         string
	simWorkbook     bool
	simYears        int
	simTrials       int
	simSeed         uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the Monte Carlo spread simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if simYears > 0 {
			cfg.Sim.Years = simYears
		}
		if simTrials > 0 {
			cfg.Sim.Trials = simTrials
		}
		if cmd.Flags().Changed("seed") {
			cfg.Sim.Seed = simSeed
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		frame, err := loadFrame(simSitesPath, simCountiesPath)
		if err != nil {
			return err
		}
		zap.L().Info("frame assembled",
			zap.Int("counties", len(frame.Counties())),
			zap.Int("sites", len(frame.Sites())),
			zap.Int("excluded", len(frame.Excluded())),
		)

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := costProvider(st)
		if err != nil {
			return err
		}
		costs, err := route.BuildMatrix(ctx, provider, frame)
		if err != nil {
			return err
		}
		if n := costs.Unavailable(); n > 0 {
			zap.L().Warn("pairs without travel cost excluded from distribution", zap.Int("pairs", n))
		}

		grav, err := gravity.Distribute(frame, costs, cfg.Sim.Alpha)
		if err != nil {
			return err
		}

		params := cfg.Sim.Params()
		simulator, err := sim.New(frame, grav, params)
		if err != nil {
			return err
		}

		paramsJSON, err := json.Marshal(params)
		if err != nil {
			return err
		}
		run, err := st.CreateRun(ctx, string(paramsJSON))
		if err != nil {
			return err
		}
		zap.L().Info("simulation started",
			zap.String("run_id", run.ID),
			zap.Int("years", params.Years),
			zap.Int("trials", params.Trials),
		)

		summary, err := simulator.Run(ctx)
		if err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("record run failure", zap.Error(failErr))
			}
			return err
		}

		summaryJSON, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		if err := st.CompleteRun(ctx, run.ID, string(summaryJSON)); err != nil {
			return err
		}

		mcPath := filepath.Join(simOutDir, simName+"_MonteCarlo.tsv")
		if err := export.WriteMonteCarloTSV(mcPath, summary, params.Years); err != nil {
			return err
		}
		sitePath := filepath.Join(simOutDir, simName+"_SiteSpecific.tsv")
		if err := export.WriteSiteTSV(sitePath, frame, summary); err != nil {
			return err
		}
		if simWorkbook {
			xlsxPath := filepath.Join(simOutDir, simName+".xlsx")
			if err := export.WriteWorkbook(xlsxPath, frame, summary, params.Years); err != nil {
				return err
			}
		}

		zap.L().Info("simulation complete",
			zap.String("run_id", run.ID),
			zap.Int("trials", summary.Trials),
			zap.String("out_dir", simOutDir),
		)
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simSitesPath, "sites", "", "site file (TSV/CSV chemistry readings, or a point shapefile)")
	simulateCmd.Flags().StringVar(&simCountiesPath, "counties", "", "county file (TSV/CSV)")
	simulateCmd.Flags().StringVar(&simOutDir, "out-dir", ".", "directory for result files")
	simulateCmd.Flags().StringVar(&simName, "name", "results", "scenario name prefix for result files")
	simulateCmd.Flags().BoolVar(&simWorkbook, "xlsx", false, "also write an xlsx workbook")
	simulateCmd.Flags().IntVar(&simYears, "years", 0, "simulated years (default from config)")
	simulateCmd.Flags().IntVar(&simTrials, "trials", 0, "Monte Carlo trials (default from config)")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 0, "random seed (default from config)")
	simulateCmd.MarkFlagRequired("sites")
	simulateCmd.MarkFlagRequired("counties")
	rootCmd.AddCommand(simulateCmd)
}
