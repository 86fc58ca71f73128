// Package component provides the component infrastructure for binfile: factory
// registration, instance creation, discovery and lifecycle.
//
// # Registration
//
// Components are registered explicitly. Each component package exports a
// Register(*Registry) error function and the binary calls it at startup:
//
//	registry := component.NewRegistry()
//	if err := writebinary.Register(registry); err != nil {
//		return err
//	}
//
//	comp, err := registry.CreateComponent("archive-images", "write_binary_file", rawConfig, deps)
//
// Factories parse their own JSON configuration and must not perform I/O. Network
// work belongs in LifecycleComponent.Start.
//
// # Schemas
//
// Configuration schemas are generated from struct tags once, at package init:
//
//	type Config struct {
//		AllowOverwrite *bool `json:"allow_overwrite" schema:"type:bool,description:Overwrite existing files,default:true"`
//	}
//
//	var schema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))
package component
