package component

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchemaTag(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		want    SchemaDirectives
		wantErr bool
	}{
		{
			name: "basic string",
			tag:  "type:string,description:Component name,category:basic",
			want: SchemaDirectives{Type: "string", Description: "Component name", Category: "basic"},
		},
		{
			name: "flags",
			tag:  "required,readonly,type:string,description:ID",
			want: SchemaDirectives{Type: "string", Description: "ID", Required: true, ReadOnly: true},
		},
		{
			name: "enum",
			tag:  "type:enum,enum:debug | info|warn,default:info",
			want: SchemaDirectives{Type: "enum", Enum: []string{"debug", "info", "warn"}, Default: "info"},
		},
		{name: "empty", tag: "", wantErr: true},
		{name: "missing type", tag: "description:x", wantErr: true},
		{name: "bad type", tag: "type:uuid", wantErr: true},
		{name: "bad category", tag: "type:int,category:odd", wantErr: true},
		{name: "bad min", tag: "type:int,min:x", wantErr: true},
		{name: "unknown flag", tag: "type:int,secret", wantErr: true},
		{name: "unknown directive", tag: "type:int,color:red", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSchemaTag(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateConfigSchema(t *testing.T) {
	type sample struct {
		Ports     *PortConfig `json:"ports"      schema:"type:ports,description:Ports"`
		Query     string      `json:"query"      schema:"required,type:string,description:Query"`
		Overwrite *bool       `json:"overwrite"  schema:"type:bool,description:Overwrite,default:true"`
		Retries   int         `json:"retries"    schema:"type:int,min:0,max:5,default:3"`
		Skipped   string      `json:"skipped"`
		Broken    string      `json:"broken"     schema:"type:nope"`
		Hidden    string      `json:"-"          schema:"type:string"`
	}

	schema := GenerateConfigSchema(reflect.TypeOf(&sample{}))

	assert.Equal(t, []string{"query"}, schema.Required)
	assert.Len(t, schema.Properties, 4)
	assert.Equal(t, true, schema.Properties["overwrite"].Default)
	assert.Equal(t, 3, schema.Properties["retries"].Default)
	assert.Equal(t, "retries", schema.Properties["retries"].Description)
	require.NotNil(t, schema.Properties["retries"].Maximum)
	assert.Equal(t, 5, *schema.Properties["retries"].Maximum)
	assert.True(t, schema.Properties["ports"].PortFields["subject"].Editable)
	assert.False(t, schema.Properties["ports"].PortFields["name"].Editable)

	assert.Empty(t, GenerateConfigSchema(reflect.TypeOf("")).Properties)
}
