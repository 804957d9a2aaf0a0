package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/compose-spec/compose-go/v2/interpolation"
	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// interpretedKeys are the service keys turned into typed ServiceSpec fields.
// They never appear in Options.Raw.
var interpretedKeys = map[string]bool{
	"image":        true,
	"links":        true,
	"volumes_from": true,
	"network_mode": true,
	"net":          true,
	"depends_on":   true,
}

// ParseOptions tunes ParseServices.
type ParseOptions struct {
	// Environment is used for ${VAR} interpolation. Nil means no variables.
	Environment map[string]string
}

// =============================================================================
// Parser Functions
// =============================================================================

// ParseServices parses a compose file into ServiceSpecs, in the order the
// services are declared in the file.
//
// Reference problems (undefined targets, cycles) are not reported here; they
// surface as ConfigurationErrors when the specs are ordered. Malformed
// reference syntax is reported here.
func ParseServices(projectName, yamlContent string, opts ParseOptions) ([]ServiceSpec, error) {
	if strings.TrimSpace(yamlContent) == "" {
		return nil, ErrEmptyInput
	}

	root, err := decodeRoot(yamlContent)
	if err != nil {
		return nil, err
	}

	servicesNode := mappingValue(root, "services")
	if servicesNode == nil || servicesNode.Kind != yaml.MappingNode || len(servicesNode.Content) == 0 {
		return nil, ErrNoServices
	}

	declared := make([]string, 0, len(servicesNode.Content)/2)
	nodes := make(map[string]*yaml.Node, len(servicesNode.Content)/2)
	for i := 0; i+1 < len(servicesNode.Content); i += 2 {
		name := servicesNode.Content[i].Value
		declared = append(declared, name)
		nodes[name] = servicesNode.Content[i+1]
		promoteLegacyNet(nodes[name])
	}

	var dict map[string]interface{}
	if err := root.Decode(&dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	project, err := loadComposeSpec(projectName, yamlContent, dict, opts.Environment)
	if err != nil {
		return nil, err
	}

	// The loader only interpolates the fields it models; options and
	// depends_on are read from an interpolated copy of the raw services.
	rawServices, err := interpolatedServices(root, opts.Environment)
	if err != nil {
		return nil, err
	}

	isService := func(name string) bool {
		_, ok := nodes[name]
		return ok
	}

	specs := make([]ServiceSpec, 0, len(declared))
	for _, name := range declared {
		svc, ok := project.Services[name]
		if !ok {
			// services behind an inactive profile are still part of the graph
			svc, ok = project.DisabledServices[name]
		}
		if !ok {
			return nil, NewParseError("services."+name, "service missing after load", ErrInvalidYAML)
		}
		raw, _ := rawServices[name].(map[string]interface{})
		spec, err := convertService(name, svc, nodes[name], raw, isService)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// decodeRoot parses the document and returns its top-level mapping node.
func decodeRoot(yamlContent string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(yamlContent), &doc); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, NewParseError("", "compose file must be a mapping", ErrInvalidYAML)
	}
	return doc.Content[0], nil
}

// promoteLegacyNet renames the legacy net key of a service to network_mode,
// which is the only spelling the compose schema accepts. An explicit
// network_mode wins and net is dropped.
func promoteLegacyNet(node *yaml.Node) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	hasMode := mappingValue(node, "network_mode") != nil
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "net" {
			continue
		}
		if hasMode {
			node.Content = append(node.Content[:i], node.Content[i+2:]...)
		} else {
			node.Content[i].Value = "network_mode"
		}
		return
	}
}

// interpolatedServices decodes the services section with ${VAR} references
// substituted from env.
func interpolatedServices(root *yaml.Node, env map[string]string) (map[string]interface{}, error) {
	var dict map[string]interface{}
	if err := root.Decode(&dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	services, _ := dict["services"].(map[string]interface{})

	out, err := interpolation.Interpolate(services, interpolation.Options{
		LookupValue: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	})
	if err != nil {
		return nil, NewParseError("services", err.Error(), ErrInvalidYAML)
	}
	return out, nil
}

// loadComposeSpec validates and interpolates the file with compose-go.
func loadComposeSpec(projectName, yamlContent string, dict map[string]interface{}, env map[string]string) (*types.Project, error) {
	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: []byte(yamlContent),
				Config:  dict,
			},
		},
		Environment: types.Mapping(env),
	}, func(opts *loader.Options) {
		opts.SetProjectName(projectName, false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		opts.SkipNormalization = true
		opts.SkipExtends = true
		// undefined references are reported by the dependency graph instead
		opts.SkipConsistencyCheck = true
	})
	if err != nil {
		return nil, NewParseError("", err.Error(), ErrInvalidYAML)
	}
	return project, nil
}

// convertService converts a compose-go service to a ServiceSpec.
// node is the service's raw mapping node, used for key order; raw is the
// interpolated service mapping.
func convertService(name string, svc types.ServiceConfig, node *yaml.Node, raw map[string]interface{}, isService func(string) bool) (ServiceSpec, error) {
	spec := ServiceSpec{
		Name: name,
		Options: Options{
			Image: svc.Image,
			Raw:   rawOptions(raw),
		},
	}

	for i, value := range svc.Links {
		link, err := ParseLink(value)
		if err != nil {
			return ServiceSpec{}, fieldError(name, fmt.Sprintf("links[%d]", i), err)
		}
		spec.Links = append(spec.Links, link)
	}

	for i, value := range svc.VolumesFrom {
		ref, err := ParseVolumesFrom(value, isService)
		if err != nil {
			return ServiceSpec{}, fieldError(name, fmt.Sprintf("volumes_from[%d]", i), err)
		}
		spec.VolumesFrom = append(spec.VolumesFrom, ref)
	}

	net, err := ParseNet(svc.NetworkMode, isService)
	if err != nil {
		return ServiceSpec{}, fieldError(name, "network_mode", err)
	}
	spec.Net = net

	spec.DependsOn = dependsOnOrder(node, raw["depends_on"])

	return spec, nil
}

// fieldError attaches the service name to a reference syntax error.
func fieldError(service, field string, err error) error {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		cfgErr.Service = service
		cfgErr.Message = fmt.Sprintf("services.%s.%s: %s", service, field, cfgErr.Message)
		return cfgErr
	}
	return err
}

// rawOptions copies everything but the interpreted keys.
func rawOptions(service map[string]interface{}) map[string]any {
	raw := make(map[string]any)
	for key, v := range service {
		if interpretedKeys[key] {
			continue
		}
		raw[key] = v
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// dependsOnOrder returns depends_on targets in declared order; both the
// list and the mapping syntax are accepted. List entries come from the
// interpolated value; mapping keys are not interpolated, so their order is
// read from node.
func dependsOnOrder(node *yaml.Node, interpolated any) []string {
	var names []string
	switch v := interpolated.(type) {
	case []interface{}:
		for _, item := range v {
			if name, ok := item.(string); ok {
				names = append(names, name)
			}
		}
	case map[string]interface{}:
		dep := mappingValue(node, "depends_on")
		if dep == nil || dep.Kind != yaml.MappingNode {
			return nil
		}
		for i := 0; i+1 < len(dep.Content); i += 2 {
			names = append(names, dep.Content[i].Value)
		}
	}
	return names
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
