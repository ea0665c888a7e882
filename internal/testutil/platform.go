// Package testutil provides shared fixtures for unit tests and helpers for
// the Redis integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PlatformJSON is a small two-PIM platform: port 1 is a 4-lane port on
// core0 and ports 5 and 6 are a 2x2 breakout on core1 controlled by 5.
const PlatformJSON = `{
  "ports": {
    "1": {
      "mapping": {
        "id": 1,
        "name": "eth1/1/1",
        "controllingPort": 1,
        "pins": [
          {"a": {"chip": "core0", "lane": 0}, "z": {"end": {"chip": "eth1/1", "lane": 0}}},
          {"a": {"chip": "core0", "lane": 1}, "z": {"end": {"chip": "eth1/1", "lane": 1}}},
          {"a": {"chip": "core0", "lane": 2}, "z": {"end": {"chip": "eth1/1", "lane": 2}}},
          {"a": {"chip": "core0", "lane": 3}, "z": {"end": {"chip": "eth1/1", "lane": 3}}}
        ],
        "portType": 0,
        "attachedCoreId": 0,
        "attachedCorePortIndex": 1
      },
      "supportedProfiles": {
        "22": {
          "pins": {
            "iphy": [
              {"id": {"chip": "core0", "lane": 0}, "tx": {"pre": -8, "pre2": 0, "main": 132, "post": -20, "post2": 0, "post3": 0}},
              {"id": {"chip": "core0", "lane": 1}, "tx": {"pre": -8, "pre2": 0, "main": 132, "post": -20, "post2": 0, "post3": 0}},
              {"id": {"chip": "core0", "lane": 2}, "tx": {"pre": -8, "pre2": 0, "main": 132, "post": -20, "post2": 0, "post3": 0}},
              {"id": {"chip": "core0", "lane": 3}, "tx": {"pre": -8, "pre2": 0, "main": 132, "post": -20, "post2": 0, "post3": 0}}
            ],
            "transceiver": [
              {"id": {"chip": "eth1/1", "lane": 0}},
              {"id": {"chip": "eth1/1", "lane": 1}},
              {"id": {"chip": "eth1/1", "lane": 2}},
              {"id": {"chip": "eth1/1", "lane": 3}}
            ]
          }
        },
        "18": {
          "pins": {
            "iphy": [
              {"id": {"chip": "core0", "lane": 0}},
              {"id": {"chip": "core0", "lane": 1}},
              {"id": {"chip": "core0", "lane": 2}},
              {"id": {"chip": "core0", "lane": 3}}
            ],
            "transceiver": [
              {"id": {"chip": "eth1/1", "lane": 0}},
              {"id": {"chip": "eth1/1", "lane": 1}},
              {"id": {"chip": "eth1/1", "lane": 2}},
              {"id": {"chip": "eth1/1", "lane": 3}}
            ]
          }
        },
        "16": {
          "subsumedPorts": [],
          "pins": {
            "iphy": [
              {"id": {"chip": "core0", "lane": 0}, "rx": {"ctlCode": 63, "dspMode": 7, "afeTrim": 4, "acCouplingBypass": 1}},
              {"id": {"chip": "core0", "lane": 1}, "rx": {"ctlCode": 63, "dspMode": 7, "afeTrim": 4, "acCouplingBypass": 1}}
            ],
            "transceiver": [
              {"id": {"chip": "eth1/1", "lane": 0}},
              {"id": {"chip": "eth1/1", "lane": 1}}
            ]
          }
        }
      }
    },
    "5": {
      "mapping": {
        "id": 5,
        "name": "eth1/2/1",
        "controllingPort": 5,
        "pins": [
          {"a": {"chip": "core1", "lane": 0}, "z": {"end": {"chip": "eth1/2", "lane": 0}}},
          {"a": {"chip": "core1", "lane": 1}, "z": {"end": {"chip": "eth1/2", "lane": 1}}}
        ],
        "portType": 0
      },
      "supportedProfiles": {
        "16": {
          "subsumedPorts": [6],
          "pins": {
            "iphy": [
              {"id": {"chip": "core1", "lane": 0}},
              {"id": {"chip": "core1", "lane": 1}}
            ],
            "transceiver": [
              {"id": {"chip": "eth1/2", "lane": 0}},
              {"id": {"chip": "eth1/2", "lane": 1}}
            ]
          }
        },
        "14": {
          "pins": {
            "iphy": [{"id": {"chip": "core1", "lane": 0}}],
            "transceiver": [{"id": {"chip": "eth1/2", "lane": 0}}]
          }
        }
      }
    },
    "6": {
      "mapping": {
        "id": 6,
        "name": "eth1/2/3",
        "controllingPort": 5,
        "pins": [
          {"a": {"chip": "core1", "lane": 2}, "z": {"end": {"chip": "eth1/2", "lane": 2}}},
          {"a": {"chip": "core1", "lane": 3}, "z": {"end": {"chip": "eth1/2", "lane": 3}}}
        ],
        "portType": 0
      },
      "supportedProfiles": {
        "16": {
          "pins": {
            "iphy": [
              {"id": {"chip": "core1", "lane": 2}},
              {"id": {"chip": "core1", "lane": 3}}
            ],
            "transceiver": [
              {"id": {"chip": "eth1/2", "lane": 2}},
              {"id": {"chip": "eth1/2", "lane": 3}}
            ]
          }
        },
        "14": {
          "pins": {
            "iphy": [{"id": {"chip": "core1", "lane": 2}}],
            "transceiver": [{"id": {"chip": "eth1/2", "lane": 2}}]
          }
        }
      }
    }
  },
  "chips": [
    {"name": "core0", "type": 1, "physicalID": 0},
    {"name": "core1", "type": 1, "physicalID": 1},
    {"name": "eth1/1", "type": 3, "physicalID": 0},
    {"name": "eth1/2", "type": 3, "physicalID": 1}
  ],
  "portConfigOverrides": [
    {
      "factor": {
        "ports": [1],
        "profiles": [22],
        "cableLengths": [1.0, 2.0]
      },
      "pins": {
        "iphy": [
          {"id": {"chip": "ALL", "lane": 0}, "tx": {"pre": -4, "pre2": 0, "main": 120, "post": -16, "post2": 0, "post3": 0}}
        ]
      }
    }
  ],
  "platformSupportedProfiles": [
    {"factor": {"profileID": 14}, "profile": {"speed": 25000, "iphy": {"numLanes": 1, "modulation": 1, "fec": 74, "medium": 1, "interfaceMode": 4, "interfaceType": 4}}},
    {"factor": {"profileID": 16}, "profile": {"speed": 50000, "iphy": {"numLanes": 2, "modulation": 1, "fec": 528, "medium": 2, "interfaceMode": 5, "interfaceType": 5}}},
    {"factor": {"profileID": 18}, "profile": {"speed": 40000, "iphy": {"numLanes": 4, "modulation": 1, "fec": 1, "medium": 2, "interfaceMode": 6, "interfaceType": 6}}},
    {"factor": {"profileID": 22}, "profile": {"speed": 100000, "iphy": {"numLanes": 4, "modulation": 1, "fec": 528, "medium": 2, "interfaceMode": 7, "interfaceType": 7}}}
  ]
}`

// WritePlatformDir writes each name -> content pair into a temp directory
// and returns the directory.
func WritePlatformDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}
