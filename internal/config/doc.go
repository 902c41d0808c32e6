// Package config provides configuration parsing for vtree.
//
// The configuration is stored in vtree.json. Every key is optional; a
// missing file is equivalent to an empty object.
//
// # Configuration File Structure
//
//	{
//	  "render": {"wrapperTag": "span", "pretty": false},
//	  "log": {"level": "info", "format": "text"},
//	  "metrics": {"namespace": "vtree"},
//	  "preview": {"host": "localhost", "port": 3000},
//	  "snapshot": {
//	    "driver": "bolt",
//	    "path": "vtree.db"
//	  }
//	}
//
// The s3 snapshot driver reads bucket, prefix, region and endpoint instead
// of path.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.PreviewAddress())
package config
