// Package config loads the pixfilter service configuration from HCL.
//
// Every block and attribute is optional; missing values keep the defaults
// returned by Default. A file looks like:
//
//	server {
//	  addr             = ":8000"
//	  static_dir       = "static"
//	  max_upload_bytes = 20971520
//	  max_pixels       = 40000000
//	  read_timeout     = "30s"
//	  write_timeout    = "60s"
//	}
//
//	engine {
//	  workers             = 0
//	  min_parallel_pixels = 65536
//	}
//
//	log {
//	  level  = "info"
//	  format = "text"
//	}
//
//	kernel "emboss" {
//	  rows = [
//	    [-2, -1, 0],
//	    [-1,  1, 1],
//	    [ 0,  1, 2],
//	  ]
//	}
//
// Kernel blocks extend the built-in catalog. Their rows must form a 3x3
// matrix of numbers; an optional divisor scales every weight by 1/divisor.
package config
