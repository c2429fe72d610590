// Package config loads modverify settings from a YAML file and the
// environment.
//
// # Overview
//
// LoadFromDir looks for modverify.yaml, modverify.yml, .modverify.yaml or
// .modverify.yml and falls back to defaults. Relative roots in the file are
// resolved against the file's directory. MODVERIFY_* variables override file
// values.
//
// # Configuration File
//
//	project:
//	  source_root: src
//	  artifact_root: build/artifacts
//	  groups:
//	    - name: Controls
//	      depends: [Types]
//	    - name: Types
//	    - name: Env
//	      external: true
//	analysis:
//	  concurrency: 8
//	  max_suggest_distance: 3
//	  third_party_patterns: ["**/third-party/**"]
//	  legacy_aliases:
//	    Old: New/path
//	report:
//	  format: github
//	  output: reports/modverify.txt
//	  fail_on: error
//	observability:
//	  log_level: debug
//	  metrics_file: /var/lib/node_exporter/modverify.prom
//
// # Environment Variables
//
//	MODVERIFY_SOURCE_ROOT, MODVERIFY_ARTIFACT_ROOT
//	MODVERIFY_CONCURRENCY, MODVERIFY_MAX_SUGGEST_DISTANCE
//	MODVERIFY_PROBE_CACHE_SIZE, MODVERIFY_THIRD_PARTY_PATTERNS (comma separated)
//	MODVERIFY_REPORT_FORMAT, MODVERIFY_REPORT_OUTPUT, MODVERIFY_FAIL_ON
//	MODVERIFY_S3_BUCKET, MODVERIFY_S3_REGION, MODVERIFY_S3_PREFIX
//	MODVERIFY_LOG_LEVEL, MODVERIFY_LOG_FORMAT, MODVERIFY_METRICS_FILE
//	MODVERIFY_OTEL_ENABLED, MODVERIFY_OTEL_ENDPOINT
//	MODVERIFY_OTEL_SERVICE_NAME, MODVERIFY_OTEL_INSECURE
package config
