// Package binfile extracts base64 binary payloads carried inside XML documents,
// writes them to files and rewrites the documents to reference those files.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│        cmd/binfile                  │  Config, logging, NATS connect,
//	│  (flags, lifecycle, metrics/health) │  component lifecycle
//	└─────────────────────────────────────┘
//	           ↓ creates through component.Registry
//	┌─────────────────────────────────────┐
//	│   processor/writebinary.Processor   │  NATS subscription per input
//	│                                     │  subject, publish to outputs
//	└─────────────────────────────────────┘
//	           ↓ runs per document
//	┌─────────────────────────────────────┐
//	│   processor/writebinary.Mediator    │  select, decode, resolve,
//	│                                     │  write, rewrite
//	└─────────────────────────────────────┘
//	           ↓ built on
//	┌──────────────┬──────────────────────┐
//	│  pathquery   │  xmldoc              │  XPath with namespaces and
//	│              │                      │  $ctx references; XML tree
//	└──────────────┴──────────────────────┘
//
// # Packages
//
//   - xmldoc: parsed documents, element and leaf nodes, lazy base64 payloads
//   - pathquery: compiled queries, the closed result set and the single-result policy
//   - message: per-message identifier and properties, built from NATS headers
//   - processor/writebinary: settings, the Mediator pipeline, the declarative
//     writeBinaryFile definition and the NATS processor
//   - component, componentregistry: discoverable components, factories and JSON
//     Schema config checks
//   - config: JSON or YAML application configuration with environment overrides
//   - natsclient: NATS connection with circuit breaker and testcontainers helpers
//   - metric, health: Prometheus registry, metrics endpoint and health report
//   - errors: classified errors and the domain sentinels
//   - pkg/retry: backoff for transient startup failures
//
// # Quick Start
//
//	platform:
//	  id: imaging
//	nats:
//	  urls: ["nats://localhost:4222"]
//	components:
//	  writer:
//	    type: processor
//	    name: write_binary_file
//	    enabled: true
//	    config:
//	      ports:
//	        inputs:
//	          - {name: in, type: nats, subject: imaging.documents}
//	        outputs:
//	          - {name: out, type: nats, subject: imaging.written}
//	      binary_element_path: "//image"
//	      target_directory: {value: /var/spool/images}
//	      target_file_name: {expression: "//fileName"}
//
//	binfile --config binfile.yaml
//
// A document such as <Entry><image>iVBORw0...</image><fileName>pic.png</fileName></Entry>
// produces /var/spool/images/pic.png and is published with the image element's
// content replaced by that path.
package binfile
