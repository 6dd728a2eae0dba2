// Package config provides configuration parsing for the pagekit server.
//
// The configuration is stored in pagekit.json. Every field is optional;
// missing fields take the defaults from New.
//
// # Configuration File Structure
//
//	{
//	  "name": "blog",
//	  "host": "localhost",
//	  "port": 3000,
//	  "logLevel": "info",
//	  "live": {
//	    "path": "/_live",
//	    "readTimeout": "60s",
//	    "writeTimeout": "10s",
//	    "heartbeat": "30s",
//	    "maxMessageSize": 4096,
//	    "allowedOrigins": ["https://blog.example.com"]
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics",
//	    "namespace": "pagekit"
//	  },
//	  "tracing": {
//	    "tracerName": "pagekit",
//	    "includeMessage": false
//	  }
//	}
package config
