// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ids generates identifiers.

  - GenerateID: random hex IDs (stats rows)
  - GenerateRoomCode: 6-character room codes without look-alike characters
  - NewPlayerID: UUID player identities

All randomness comes from crypto/rand.
*/
package ids
