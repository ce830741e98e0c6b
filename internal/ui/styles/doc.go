// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the color palette and lipgloss styles of the chat
window.

All colors are lipgloss.AdaptiveColor values, so one palette serves light
and dark terminals. NewTheme picks the background from the "ui.theme"
setting: "dark" and "light" force it, "auto" asks the terminal through
termenv.

Sender names are colored by NickColor, which hashes the nick into a small
palette so a nick keeps its color everywhere it appears.
*/
package styles
