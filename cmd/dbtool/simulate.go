package main

import (
	"time"

	"dispatch-service/internal/adapters/events"
	"dispatch-service/internal/adapters/memory"
	"dispatch-service/internal/config"
	"dispatch-service/internal/dataset"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/services"
	"dispatch-service/internal/services/simulation"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type simulateOutput struct {
	ID        string                    `json:"id"`
	Report    simulation.Report         `json:"report"`
	Metadata  domain.SimulationMetadata `json:"metadata"`
	Timestamp time.Time                 `json:"timestamp"`
}

func newSimulateCmd(cfg *config.Config) *cobra.Command {
	var (
		dataPath  string
		params    domain.RunParameters
		strategy  string
		rulesPath string
		details   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulation over a dataset file without a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load(dataPath)
			if err != nil {
				return err
			}

			engine := simulation.NewEngine()
			engine.Log = logrus.StandardLogger()
			if engine.Strategy, err = simulation.ParseStrategy(strategy); err != nil {
				return err
			}
			if rulesPath != "" {
				if engine.Rules, err = simulation.LoadRules(rulesPath); err != nil {
					return err
				}
			}

			store := memory.FromDataset(ds)
			svc := &services.SimulationService{
				Drivers: store,
				Routes:  store,
				Orders:  store,
				Results: store,
				Events:  events.NoopPublisher{},
				Engine:  engine,
			}

			run, err := svc.Run(commandContext(cmd), params)
			if err != nil {
				return err
			}

			if !details {
				run.Report.Details = nil
			}
			return printJSON(cmd.OutOrStdout(), simulateOutput{
				ID:        run.ID,
				Report:    run.Report,
				Metadata:  run.Metadata,
				Timestamp: run.Timestamp,
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&dataPath, "data", cfg.SeedPath, "Dataset file (JSON or YAML)")
	f.IntVar(&params.NumDrivers, "drivers", 0, "Number of drivers to dispatch")
	f.StringVar(&params.StartTime, "start", "09:00", "Shift start time (HH:MM)")
	f.Float64Var(&params.MaxHoursPerDay, "max-hours", 8, "Maximum working hours per driver")
	f.StringVar(&strategy, "strategy", cfg.AssignmentStrategy, "Assignment strategy (round-robin|least-loaded)")
	f.StringVar(&rulesPath, "rules", cfg.RulesPath, "YAML rule set overriding the defaults")
	f.BoolVar(&details, "details", false, "Include per-order outcomes")
	_ = cmd.MarkFlagRequired("drivers")

	return cmd
}
