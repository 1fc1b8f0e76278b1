// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

/*
Package supervisor provides process supervision for Veilcount using suture v4.

The supervisor tree organizes the long-running services into two layers
for failure isolation:

	RootSupervisor ("veilcount")
	├── CollectorSupervisor ("collector-layer")
	│   └── ProbeService (periodic backend liveness probe)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in the probe loop never takes down the HTTP server; each layer
restarts independently with exponential backoff. Supervision events are
logged through slog via the sutureslog adapter.
*/
package supervisor
