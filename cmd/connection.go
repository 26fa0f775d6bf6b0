// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Thermoquad/minewatch/pkg/config"
	"github.com/Thermoquad/minewatch/pkg/link"
)

// GetPassword retrieves the WebSocket password from settings or prompts the user
func GetPassword(s *config.Settings) (string, error) {
	// MINEWATCH_PASSWORD or the config file
	if s.Password != "" {
		return s.Password, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// newOpener builds the link opener, prompting for a password once when a
// WebSocket username is configured
func newOpener(s *config.Settings) (link.Opener, error) {
	wsOpts := s.WebSocketOptions()
	if cfg := s.LinkConfig(); cfg != nil && cfg.IsWebSocket() && wsOpts.Username != "" {
		password, err := GetPassword(s)
		if err != nil {
			return nil, err
		}
		wsOpts.Password = password
	}
	return link.DefaultOpener(wsOpts, s.ReadTimeout), nil
}

// resolveLinkConfig returns the configured link, or the first discovered serial
// port. A nil config with no error means nothing is available.
func resolveLinkConfig(s *config.Settings, list link.PortLister) (*link.Config, error) {
	if cfg := s.LinkConfig(); cfg != nil {
		return cfg, nil
	}

	cfg, err := link.DiscoverConfig(list, s.Baud)
	if errors.Is(err, link.ErrNoConfig) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
