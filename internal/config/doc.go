// Package config loads and saves the bleradar configuration file.
//
// The configuration is a versioned YAML document. Every field has a default
// (see Default), so a missing file or a partial file is valid; values given
// on the command line override the file.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/bleradar/config.yaml or $HOME/.config/bleradar/config.yaml
//   - macOS: $HOME/.config/bleradar/config.yaml
//   - Windows: %LOCALAPPDATA%\bleradar\config.yaml
//
// # Example
//
//	version: 1
//	log_level: info
//	scan:
//	  dwell: 10s
//	  interval: 5s
//	  carry_forward: false
//	datasets:
//	  vendors: /usr/share/bleradar/oui.txt
//	  services: /usr/share/bleradar/services
//	  builtin_vendors: true
//	publish:
//	  file:
//	    path: /run/bleradar/{adapter}.json
//	  mqtt:
//	    broker: tcp://localhost:1883
//	    prefix: bleradar
//	  server:
//	    enabled: true
//	    port: 8765
//	    advertise: true
//	  console:
//	    enabled: true
//
// # Security
//
// The MQTT password may be left out of the file and supplied through the
// BLERADAR_MQTT_PASSWORD environment variable instead. Save writes files
// readable only by the owner.
package config
