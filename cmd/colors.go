package cmd

import "github.com/fatih/color"

var colorHighlight = color.New(color.FgHiBlue).SprintFunc()
var colorReady = color.New(color.FgHiGreen, color.Bold).SprintFunc()
var colorFailed = color.New(color.FgHiRed, color.Bold).SprintFunc()
