// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

/*
Package supervisor provides process supervision using suture v4.

The supervisor tree organizes the long-running services into two layers
for failure isolation:

	RootSupervisor ("shapesync")
	├── MessagingSupervisor ("messaging-layer")
	│   └── Hub (broadcast fan-out)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted automatically with exponential backoff,
and shutdown drains each layer within the configured timeout. Supervisor
lifecycle events are logged through a sutureslog handler bridged to the
application logger.
*/
package supervisor
