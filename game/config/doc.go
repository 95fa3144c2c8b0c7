// Package config provides configuration management for the Quizzi client.
//
// The config package handles:
//   - Loading client configuration from a JSON file
//   - Environment variable overrides
//   - Validation of connection, reconnection, and rate limit settings
//   - Defaults suitable for the public game servers
//
// Configuration Format:
//
// Configuration is a single JSON object:
//
//	{
//	  "server_url": "wss://play.example.com",
//	  "player_name": "Ada",
//	  "identity_file": "player.json",
//	  "reconnect": {
//	    "initial_delay_ms": 1000,
//	    "max_delay_ms": 32000,
//	    "max_attempts": 5,
//	    "factor": 2
//	  },
//	  "rate_limit": {
//	    "max_requests": 60,
//	    "window_ms": 1000
//	  }
//	}
//
// Environment Overrides:
//
// Each top-level setting can be overridden through the environment:
// QUIZZI_SERVER_URL, QUIZZI_PLAYER_NAME, and QUIZZI_IDENTITY_FILE. Overrides
// are applied after the file is read, so they win.
//
// Usage:
//
//	cfg, err := config.Load("quizzi.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	policy := cfg.ReconnectPolicy()
package config
