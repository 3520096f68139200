// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

const configSchema = `{
  "type": "object",
  "properties": {
    "file-sources": {
      "description": "File-pair sources (SMSPEC/UNSMRY) to attach at startup.",
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "base-path": {
            "description": "Path with or without the SMSPEC/UNSMRY extension.",
            "type": "string"
          },
          "name": {
            "description": "Optional name override; defaults to the file stem.",
            "type": "string"
          }
        },
        "required": ["base-path"]
      }
    },
    "network-sources": {
      "description": "Live network sources to attach at startup.",
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "address": {
            "description": "host:port of the running simulator's data socket.",
            "type": "string"
          },
          "identity": {
            "description": "Optional identity/authorization token sent in the handshake frame.",
            "type": "string"
          },
          "name": {
            "description": "Optional name override; defaults to address.",
            "type": "string"
          }
        },
        "required": ["address"]
      }
    },
    "refresh-interval": {
      "description": "Duration string (time.ParseDuration syntax) between manager refresh ticks.",
      "type": "string"
    }
  }
}`
