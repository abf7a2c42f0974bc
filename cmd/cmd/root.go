/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brayvid/news-site/internal/config"
	"github.com/brayvid/news-site/internal/logger"
	"github.com/brayvid/news-site/internal/pipeline"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "newsdigest",
	Short: "newsdigest generates a personalized news digest from Google News",
	Long: `newsdigest fetches recent headlines for the topics on your preference
sheet, filters out stories you have already seen, asks Gemini to curate
the best of what remains, and publishes the result as content.json and
digest.html.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.newsdigest.yaml)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one digest generation cycle",
	Long: `Run a complete digest cycle: load preferences from the remote sheet,
fetch topic feeds, filter against history, select with Gemini, and write
the digest artifacts.

Example:
  newsdigest run
  newsdigest run --config ./newsdigest.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			logger.Error("Failed to load configuration", err)
			os.Exit(1)
		}

		if err := pipeline.New(cfg).Run(cmd.Context()); err != nil {
			logger.Error("Digest run failed", err)
			os.Exit(1)
		}
	},
}
