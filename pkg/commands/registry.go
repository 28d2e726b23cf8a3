package commands

import "sync"

var (
	mu       sync.RWMutex
	registry = make(map[string]Command)
	order    []string
)

// Register adds a command. Registering the same name twice replaces it.
func Register(cmd Command) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[cmd.Name]; !exists {
		order = append(order, cmd.Name)
	}
	registry[cmd.Name] = cmd
}

// Get looks up a command by name.
func Get(name string) (Command, bool) {
	mu.RLock()
	defer mu.RUnlock()

	cmd, ok := registry[name]
	return cmd, ok
}

// GetAll returns every command in registration order.
func GetAll() []Command {
	mu.RLock()
	defer mu.RUnlock()

	all := make([]Command, 0, len(order))
	for _, name := range order {
		all = append(all, registry[name])
	}
	return all
}
