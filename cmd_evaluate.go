package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wildfunctions/genetic_diagnosis/pkg/diagnosis"
	"github.com/wildfunctions/genetic_diagnosis/pkg/store"
)

type evaluateOptions struct {
	runID      string
	expression string
	dataPath   string
	namesPath  string
	storeKind  string
	dbPath     string
}

func newEvaluateCmd() *cobra.Command {
	o := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score an archived or given program on a data set",
		Long: `Re-parses a program and reports the percentage of records it classifies
correctly. The program is either the best program of an archived run
(--run) or an expression given directly (--expr, which needs --names).

Examples:
  genetic_diagnosis evaluate --run 3f2c... --data test.csv --db runs.db
  genetic_diagnosis evaluate --expr "(Clump Thickness - 5.5)" --names names.txt --data test.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, o, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.runID, "run", "", "archived run ID")
	f.StringVar(&o.expression, "expr", "", "expression to evaluate instead of an archived run")
	f.StringVar(&o.dataPath, "data", "", "records to classify (CSV)")
	f.StringVar(&o.namesPath, "names", "", "variable names, one per line (defaults to the run's names)")
	f.StringVar(&o.storeKind, "store", "sqlite", "run archive backend")
	f.StringVar(&o.dbPath, "db", "runs.db", "sqlite database path")
	_ = cmd.MarkFlagRequired("data")
	cmd.MarkFlagsMutuallyExclusive("run", "expr")
	cmd.MarkFlagsOneRequired("run", "expr")
	return cmd
}

func runEvaluate(cmd *cobra.Command, o *evaluateOptions, stdout io.Writer) error {
	var names []string
	if o.namesPath != "" {
		var err error
		if names, err = diagnosis.LoadVariableNames(o.namesPath); err != nil {
			return err
		}
	}

	text := o.expression
	if o.runID != "" {
		run, err := loadRun(cmd, o.storeKind, o.dbPath, o.runID)
		if err != nil {
			return err
		}
		text = run.BestExpression
		if names == nil {
			names = run.VarNames
		}
	} else if names == nil {
		return errors.New("--expr requires --names")
	}

	program, err := diagnosis.ParseProgram(text, names)
	if err != nil {
		return err
	}
	data, err := diagnosis.LoadPatients(o.dataPath)
	if err != nil {
		return err
	}
	fitness, err := diagnosis.Evaluate(program, data)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Program:  %s\n", program.Format(names))
	fmt.Fprintf(stdout, "Correct:  %d of %d\n", fitness.Correct, fitness.Total)
	fmt.Fprintf(stdout, "Percentage of instances correctly classified: %.4f%%\n", 100*(1-fitness.Error))
	return nil
}

func loadRun(cmd *cobra.Command, kind, path, id string) (store.RunRecord, error) {
	runs, err := store.NewStore(kind, path)
	if err != nil {
		return store.RunRecord{}, err
	}
	if err := runs.Init(cmd.Context()); err != nil {
		return store.RunRecord{}, fmt.Errorf("open run archive: %w", err)
	}
	defer func() { _ = store.CloseIfSupported(runs) }()

	run, ok, err := runs.GetRun(cmd.Context(), id)
	if err != nil {
		return store.RunRecord{}, err
	}
	if !ok {
		return store.RunRecord{}, fmt.Errorf("run %s not found in %s", id, path)
	}
	return run, nil
}
