// package ui implements the attended-mode confirmation gate shown between
// planning and applying mutations, built on bubbletea and lipgloss.
package ui
