// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists ircdesk settings in SQLite.
//
// The database remembers servers (with the identity used on each), their
// channels with auto-join flags, and free-form user settings such as the
// default profile. Chat history is never written.
//
// # Key Types
//
//   - Store: the database handle
//   - Server, Channel, Profile: stored records
//
// # Usage
//
//	store, err := storage.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.SaveServer(storage.Server{Name: "irc.libera.chat", Port: 6697, UseTLS: true})
//	err = store.SaveChannel(storage.Channel{Server: "irc.libera.chat", Name: "#go-nuts", AutoJoin: true})
//
// Lookups of missing rows return errors wrapping ErrNotFound.
package storage
