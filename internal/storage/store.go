// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a server, channel, or setting does not exist.
var ErrNotFound = errors.New("not found")

// Setting keys used for the profile.
const (
	KeyNickname = "nickname"
	KeyUsername = "username"
	KeyRealname = "realname"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Server is a remembered server and the identity used on it.
type Server struct {
	Name          string
	Port          int
	UseTLS        bool
	Nickname      string
	Username      string
	Realname      string
	LastConnected time.Time
}

// Channel is a remembered channel or private chat.
type Channel struct {
	Server    string
	Name      string
	IsPrivate bool
	AutoJoin  bool
}

// Profile is the default identity.
type Profile struct {
	Nickname string
	Username string
	Realname string
}

// =============================================================================
// STORE
// =============================================================================

// Store persists servers, channels, and user settings in SQLite.
// Chat history is never stored.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON", // channels cascade with their server
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// SERVERS
// =============================================================================

// SaveServer inserts or updates a server and stamps it as just connected.
func (s *Store) SaveServer(srv Server) error {
	if srv.Name == "" {
		return fmt.Errorf("save server: empty name")
	}
	if srv.Port == 0 {
		srv.Port = 6667
	}
	_, err := s.db.Exec(`
		INSERT INTO servers (server_name, port, use_tls, nickname, username, realname, last_connected)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(server_name) DO UPDATE SET
			port = excluded.port,
			use_tls = excluded.use_tls,
			nickname = excluded.nickname,
			username = excluded.username,
			realname = excluded.realname,
			last_connected = excluded.last_connected`,
		srv.Name, srv.Port, boolToInt(srv.UseTLS), srv.Nickname, srv.Username, srv.Realname, s.now().Unix())
	if err != nil {
		return fmt.Errorf("save server %s: %w", srv.Name, err)
	}
	return nil
}

// Servers returns every saved server, most recently connected first.
func (s *Store) Servers() ([]Server, error) {
	rows, err := s.db.Query(`
		SELECT server_name, port, use_tls, nickname, username, realname, last_connected
		FROM servers
		ORDER BY last_connected DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	defer rows.Close()

	var servers []Server
	for rows.Next() {
		var srv Server
		var useTLS int
		var last int64
		if err := rows.Scan(&srv.Name, &srv.Port, &useTLS, &srv.Nickname, &srv.Username, &srv.Realname, &last); err != nil {
			return nil, fmt.Errorf("list servers: %w", err)
		}
		srv.UseTLS = useTLS != 0
		if last > 0 {
			srv.LastConnected = time.Unix(last, 0)
		}
		servers = append(servers, srv)
	}
	return servers, rows.Err()
}

// Server returns one saved server.
func (s *Store) Server(name string) (Server, error) {
	srv := Server{Name: name}
	var useTLS int
	var last int64
	err := s.db.QueryRow(`
		SELECT port, use_tls, nickname, username, realname, last_connected
		FROM servers WHERE server_name = ?`, name).
		Scan(&srv.Port, &useTLS, &srv.Nickname, &srv.Username, &srv.Realname, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return Server{}, fmt.Errorf("server %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return Server{}, fmt.Errorf("server %s: %w", name, err)
	}
	srv.UseTLS = useTLS != 0
	if last > 0 {
		srv.LastConnected = time.Unix(last, 0)
	}
	return srv, nil
}

// DeleteServer removes a server and its channels.
func (s *Store) DeleteServer(name string) error {
	res, err := s.db.Exec("DELETE FROM servers WHERE server_name = ?", name)
	if err != nil {
		return fmt.Errorf("delete server %s: %w", name, err)
	}
	return affected(res, "server "+name)
}

// =============================================================================
// CHANNELS
// =============================================================================

// SaveChannel inserts or updates a channel of a saved server.
func (s *Store) SaveChannel(ch Channel) error {
	if ch.Name == "" {
		return fmt.Errorf("save channel: empty name")
	}
	serverID, err := s.serverID(ch.Server)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO channels (server_id, channel_name, is_private, auto_join)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(server_id, channel_name) DO UPDATE SET
			is_private = excluded.is_private,
			auto_join = excluded.auto_join`,
		serverID, ch.Name, boolToInt(ch.IsPrivate), boolToInt(ch.AutoJoin))
	if err != nil {
		return fmt.Errorf("save channel %s on %s: %w", ch.Name, ch.Server, err)
	}
	return nil
}

// Channels returns the saved channels of a server in the order they were added.
func (s *Store) Channels(server string) ([]Channel, error) {
	rows, err := s.db.Query(`
		SELECT c.channel_name, c.is_private, c.auto_join
		FROM channels c
		JOIN servers s ON c.server_id = s.id
		WHERE s.server_name = ?
		ORDER BY c.id ASC`, server)
	if err != nil {
		return nil, fmt.Errorf("list channels of %s: %w", server, err)
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		ch := Channel{Server: server}
		var private, autoJoin int
		if err := rows.Scan(&ch.Name, &private, &autoJoin); err != nil {
			return nil, fmt.Errorf("list channels of %s: %w", server, err)
		}
		ch.IsPrivate = private != 0
		ch.AutoJoin = autoJoin != 0
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// Channel returns one saved channel.
func (s *Store) Channel(server, name string) (Channel, error) {
	ch := Channel{Server: server, Name: name}
	var private, autoJoin int
	err := s.db.QueryRow(`
		SELECT c.is_private, c.auto_join
		FROM channels c
		JOIN servers s ON c.server_id = s.id
		WHERE s.server_name = ? AND c.channel_name = ?`, server, name).Scan(&private, &autoJoin)
	if errors.Is(err, sql.ErrNoRows) {
		return Channel{}, fmt.Errorf("channel %s on %s: %w", name, server, ErrNotFound)
	}
	if err != nil {
		return Channel{}, fmt.Errorf("channel %s on %s: %w", name, server, err)
	}
	ch.IsPrivate = private != 0
	ch.AutoJoin = autoJoin != 0
	return ch, nil
}

// DeleteChannel removes a channel of a server.
func (s *Store) DeleteChannel(server, name string) error {
	serverID, err := s.serverID(server)
	if err != nil {
		return err
	}
	res, err := s.db.Exec("DELETE FROM channels WHERE server_id = ? AND channel_name = ?", serverID, name)
	if err != nil {
		return fmt.Errorf("delete channel %s on %s: %w", name, server, err)
	}
	return affected(res, "channel "+name+" on "+server)
}

func (s *Store) serverID(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM servers WHERE server_name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("server %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("server %s: %w", name, err)
	}
	return id, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// SetSetting stores a user setting.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO user_settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// Setting returns a user setting, or def when it is not set.
func (s *Store) Setting(key, def string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM user_settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// =============================================================================
// PROFILE
// =============================================================================

// SaveProfile stores the default identity. Empty username and realname fall
// back to the nickname.
func (s *Store) SaveProfile(nickname, username, realname string) error {
	if nickname == "" {
		return fmt.Errorf("save profile: empty nickname")
	}
	if username == "" {
		username = nickname
	}
	if realname == "" {
		realname = nickname
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Unix()
	for _, kv := range [][2]string{{KeyNickname, nickname}, {KeyUsername, username}, {KeyRealname, realname}} {
		if _, err := tx.Exec(`
			INSERT INTO user_settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			kv[0], kv[1], now); err != nil {
			return fmt.Errorf("save profile %s: %w", kv[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Profile returns the default identity. When no nickname is stored yet a
// random one is generated and saved so it stays stable across runs.
func (s *Store) Profile() (Profile, error) {
	nick, err := s.Setting(KeyNickname, "")
	if err != nil {
		return Profile{}, err
	}
	if nick == "" {
		nick = RandomNickname()
		if err := s.SaveProfile(nick, "", ""); err != nil {
			return Profile{}, err
		}
	}

	user, err := s.Setting(KeyUsername, nick)
	if err != nil {
		return Profile{}, err
	}
	realname, err := s.Setting(KeyRealname, nick)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Nickname: nick, Username: user, Realname: realname}, nil
}

// RandomNickname returns a nickname of the form ircdesk_NNNNNN.
func RandomNickname() string {
	return fmt.Sprintf("ircdesk_%06d", 100000+rand.IntN(900000))
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func affected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
