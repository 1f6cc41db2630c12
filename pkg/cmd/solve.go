// Copyright Quantrel Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/quantrel/go-quantrel/pkg/circuit"
	"github.com/quantrel/go-quantrel/pkg/smt"
	"github.com/quantrel/go-quantrel/pkg/solver"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// solveCmd decides a problem file and prints the verdict, the instance when
// sat, and the solving statistics.
var solveCmd = &cobra.Command{
	Use:   "solve [flags] problem_file",
	Short: "Decide satisfiability of a problem file",
	Long: `Translate the given problem to SMT-LIB, run the configured solver over it
and report the verdict.  On sat, the weighted instance is printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		cfg := solveConfig(cmd)
		p := readProblemFile(args[0])
		opts := overrideOptions(p.Options, cfg)

		s := solver.New(opts)
		count := 0

		sol, err := s.Solve(p.Formula, p.Bounds)

		for err == nil && sol != nil {
			report(sol)
			count++

			if sol.Verdict != solver.SatVerdict || cfg.all == 0 || (cfg.all > 0 && count >= cfg.all) {
				break
			}

			sol, err = solver.LastSolve().Next()
		}

		if err != nil {
			log.Error(err)
			os.Exit(3)
		}
	},
}

// solveCfg captures the command-line overrides of a solve.
type solveCfg struct {
	solverName string
	domain     string
	tnorm      string
	binary     string
	timeout    time.Duration
	maxWeight  uint
	increment  bool
	// Number of solutions to enumerate; 0 means just the first.
	all int
}

func solveConfig(cmd *cobra.Command) solveCfg {
	var cfg solveCfg

	cfg.solverName = GetString(cmd, "solver")
	cfg.domain = GetString(cmd, "domain")
	cfg.tnorm = GetString(cmd, "tnorm")
	cfg.binary = GetString(cmd, "binary")
	cfg.maxWeight = GetUint(cmd, "max-weight")
	cfg.increment = GetFlag(cmd, "incremental")

	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	cfg.timeout = timeout

	all, err := cmd.Flags().GetInt("all")
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	cfg.all = all

	return cfg
}

// overrideOptions layers the command-line flags over the options declared in
// the problem file.
func overrideOptions(opts solver.Options, cfg solveCfg) solver.Options {
	if cfg.solverName != "" {
		if kind, ok := smt.ParseSolverKind(cfg.solverName); ok {
			opts.Solver = kind
		} else {
			log.Errorf("unknown solver %q", cfg.solverName)
			os.Exit(2)
		}
	}

	switch cfg.domain {
	case "":
	case "integer", "INTEGER":
		opts.Domain = circuit.Integer
	case "fuzzy", "FUZZY":
		opts.Domain = circuit.Fuzzy
	default:
		log.Errorf("unknown domain %q", cfg.domain)
		os.Exit(2)
	}

	if cfg.tnorm != "" {
		if t, ok := circuit.ParseTnorm(cfg.tnorm); ok {
			opts.Tnorm = t
		} else {
			log.Errorf("unknown t-norm %q", cfg.tnorm)
			os.Exit(2)
		}
	}

	if cfg.binary != "" {
		opts.BinaryPath = cfg.binary
	}

	if cfg.timeout > 0 {
		opts.Timeout = cfg.timeout
	}

	if cfg.maxWeight > 0 {
		w := int64(cfg.maxWeight)
		opts.MaxWeight = &w
	}

	if cfg.increment {
		opts.Incremental = true
	}

	return opts
}

func report(sol *solver.Solution) {
	fmt.Println(sol.Verdict)

	if sol.Instance != nil {
		fmt.Print(sol.Instance)
	}

	fmt.Printf("translation: %dms, solving: %dms, %d primary variables, %d function symbols, %d assertions\n",
		sol.Stats.TranslationTime.Milliseconds(), sol.Stats.SolvingTime.Milliseconds(),
		sol.Stats.PrimaryVariables, sol.Stats.FunctionSymbols, sol.Stats.Assertions)
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().String("solver", "", "solver to use (Z3, MathSAT, CVC4, Yices)")
	solveCmd.Flags().String("domain", "", "analysis domain (integer, fuzzy)")
	solveCmd.Flags().String("tnorm", "", "fuzzy t-norm (Godel, Lukasiewicz, Product, Drastic, Einstein, Add_Min, Max_Product)")
	solveCmd.Flags().String("binary", "", "path to the solver executable")
	solveCmd.Flags().Duration("timeout", 0, "deadline per solver call")
	solveCmd.Flags().Uint("max-weight", 0, "upper bound on integer weights")
	solveCmd.Flags().Bool("incremental", false, "drive the solver incrementally")
	solveCmd.Flags().Int("all", 0, "enumerate up to this many solutions (-1 for all)")
}
