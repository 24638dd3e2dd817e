// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package validation provides the checks shared by the config loader and
// the CLI.
package validation

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// ValidatePort validates that a port number is in the valid range [1, 65535].
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of valid range [1, 65535]", port)
	}
	return nil
}

// ValidateIP validates that a string is a valid IPv4 or IPv6 address.
func ValidateIP(ip string) error {
	if ip == "" {
		return fmt.Errorf("IP address cannot be empty")
	}
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid IP address: %s", ip)
	}
	return nil
}

// ValidateCIDR validates that a string is valid CIDR notation.
func ValidateCIDR(cidr string) error {
	if cidr == "" {
		return fmt.Errorf("CIDR cannot be empty")
	}
	if _, _, err := net.ParseCIDR(cidr); err != nil {
		return fmt.Errorf("invalid CIDR notation %s: %w", cidr, err)
	}
	return nil
}

// ValidateBanTarget accepts what fail2ban can hold in a jail: a single
// address or a network in CIDR notation.
func ValidateBanTarget(target string) error {
	if strings.Contains(target, "/") {
		return ValidateCIDR(target)
	}
	return ValidateIP(target)
}

// ValidateListenAddr validates a "host:port" listen address. The host may
// be empty to listen on every interface.
func ValidateListenAddr(addr string) error {
	if addr == "" {
		return nil
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %s (expected 'host:port'): %w", addr, err)
	}
	if host != "" && net.ParseIP(host) == nil {
		if err := ValidateHostname(host); err != nil {
			return fmt.Errorf("invalid listen host in %s: %w", addr, err)
		}
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid listen port in %s: %w", addr, err)
	}
	if err := ValidatePort(port); err != nil {
		return fmt.Errorf("invalid listen port in %s: %w", addr, err)
	}
	return nil
}

var hostnameLabel = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// ValidateHostname validates a DNS hostname such as "localhost" or
// "metrics.example.com".
func ValidateHostname(host string) error {
	if host == "" {
		return fmt.Errorf("hostname cannot be empty")
	}
	if len(host) > 253 {
		return fmt.Errorf("hostname too long (max 253 characters): %s", host)
	}
	for _, label := range strings.Split(strings.TrimSuffix(host, "."), ".") {
		if !hostnameLabel.MatchString(label) {
			return fmt.Errorf("invalid hostname %s", host)
		}
	}
	return nil
}

var unitName = regexp.MustCompile(`^[a-zA-Z0-9:_.@-]+$`)

// ValidateUnitName validates a systemd unit name, with or without the
// ".service" suffix.
func ValidateUnitName(name string) error {
	if name == "" {
		return fmt.Errorf("unit name cannot be empty")
	}
	if strings.HasPrefix(name, "-") || !unitName.MatchString(name) {
		return fmt.Errorf("invalid unit name: %s", name)
	}
	return nil
}
