// Package main запускает систему бронирования билетов парка: HTTP-сервер, текстовое меню
// и служебные команды.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "themepark",
	Short:         "Theme park ticket booking system",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(revenueCmd)
}
