package plugin

import (
	"fmt"
	"os/exec"

	hplugin "github.com/hashicorp/go-plugin"
)

// Launch starts the collaborator binary at path as a go-plugin subprocess
// and returns Collaborator clients for each subject it exposes, along with
// a Kill function the caller must invoke when done.
func Launch(path string) (map[Subject]Collaborator, func(), error) {
	client := hplugin.NewClient(&hplugin.ClientConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap(),
		Cmd:             exec.Command(path),
		AllowedProtocols: []hplugin.Protocol{hplugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("failed to start collaborator plugin %s: %w", path, err)
	}

	result := make(map[Subject]Collaborator, len(allSubjects))
	for _, s := range allSubjects {
		raw, err := rpcClient.Dispense(string(s))
		if err != nil {
			client.Kill()
			return nil, nil, fmt.Errorf("collaborator %s does not expose subject %q: %w", path, s, err)
		}
		c, ok := raw.(Collaborator)
		if !ok {
			client.Kill()
			return nil, nil, fmt.Errorf("collaborator %s subject %q has the wrong shape", path, s)
		}
		result[s] = c
	}

	return result, client.Kill, nil
}
