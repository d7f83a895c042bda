/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

func printSuccess(format string, a ...interface{}) {
	color.Green("✓ "+format, a...)
}

func printFailure(format string, a ...interface{}) {
	color.Red("✗ "+format, a...)
}

func printInfo(format string, a ...interface{}) {
	color.Cyan(format, a...)
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
