package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bioguard",
	Short: "A biometric identity terminal backed by a multimodal AI oracle",
	Long: `Bioguard Core enrolls personnel from captured face images and identifies
them later by asking a multimodal AI model (Gemini, OpenAI, Ollama) to
compare a fresh capture against the stored biometric descriptors.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
