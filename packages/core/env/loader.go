package env

// SharedEnvironment holds variables common to every profile; its entries
// are merged under each named environment, with the named profile winning
// on conflicts.
const SharedEnvironment = "$shared"

type Environment struct {
	Name      string
	Variables map[string]any
}

// LoadEnvironment builds the active profile from the config environments
// section: $shared first, then the named profile on top.
func LoadEnvironment(environments map[string]map[string]any, name string) *Environment {
	env := &Environment{
		Name:      name,
		Variables: make(map[string]any),
	}
	for k, v := range environments[SharedEnvironment] {
		env.Variables[k] = v
	}
	if name != "" && name != SharedEnvironment {
		for k, v := range environments[name] {
			env.Variables[k] = v
		}
	}
	return env
}

func MergeVariables(sources ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}
