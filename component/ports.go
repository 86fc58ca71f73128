package component

// PortDefinition represents a port configuration from JSON
type PortDefinition struct {
	Name        string `json:"name"                  schema:"readonly,type:string,description:Port identifier"`
	Type        string `json:"type,omitempty"        schema:"readonly,type:string,description:Port type"`
	Subject     string `json:"subject,omitempty"     schema:"editable,type:string,description:NATS subject pattern"`
	Queue       string `json:"queue,omitempty"       schema:"editable,type:string,description:NATS queue group"`
	Interface   string `json:"interface,omitempty"   schema:"readonly,type:string,description:Interface contract type"`
	Required    bool   `json:"required,omitempty"    schema:"readonly,type:bool,description:Whether port connection is required"`
	Description string `json:"description,omitempty" schema:"readonly,type:string,description:Human-readable port description"`
}

// PortConfig represents port configuration in component config
type PortConfig struct {
	Inputs  []PortDefinition `json:"inputs,omitempty"`
	Outputs []PortDefinition `json:"outputs,omitempty"`
}

// BuildPortFromDefinition creates a Port from a PortDefinition. Only NATS
// pub/sub ports are supported.
func BuildPortFromDefinition(def PortDefinition, direction Direction) Port {
	var iface *InterfaceContract
	if def.Interface != "" {
		iface = &InterfaceContract{
			Type:    def.Interface,
			Version: "v1",
		}
	}
	return Port{
		Name:        def.Name,
		Direction:   direction,
		Required:    def.Required,
		Description: def.Description,
		Config: NATSPort{
			Subject:   def.Subject,
			Queue:     def.Queue,
			Interface: iface,
		},
	}
}

// Subjects returns the subjects of the NATS definitions in defs, in order.
func Subjects(defs []PortDefinition) []string {
	var subjects []string
	for _, def := range defs {
		if (def.Type == "" || def.Type == "nats") && def.Subject != "" {
			subjects = append(subjects, def.Subject)
		}
	}
	return subjects
}
