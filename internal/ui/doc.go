// Package ui provides the terminal components used by pch's commands.
//
// # Components Overview
//
//	RunSpinner     - Bubble Tea spinner shown while a slow call runs
//	NewTable       - Bubbles table with the CLI's styling
//	RenderAnalysis - An analysis reply with its status line colored
//	Confirm        - Yes/no prompt via Huh, refusing without a terminal
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Good status, passing checks
//	ColorError     (red)    - Critical status, failures
//	ColorWarning   (yellow) - Warning status
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//
// Use DisableColors() to switch to monochrome output (for --no-color).
package ui
