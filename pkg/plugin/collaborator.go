// Package plugin defines the contract for external collaborators: small
// out-of-process helpers that perform heuristics grove itself does not
// implement (project-type detection, commit message drafting, CLAUDE.md
// templating, container setup wizards). Each subject is registered under a
// name and dispatched either to a hashicorp/go-plugin-hosted process or to
// an in-process default stub.
package plugin

import (
	"context"
	"net/rpc"

	hplugin "github.com/hashicorp/go-plugin"
)

// Subject identifies which collaborator heuristic is being invoked.
type Subject string

const (
	SubjectDetectProjectType Subject = "detect-project-type"
	SubjectDraftCommit       Subject = "draft-commit"
	SubjectRenderClaudeMD    Subject = "render-claude-md"
	SubjectContainerSetup    Subject = "container-setup"
)

// Collaborator is the contract every external collaborator implements,
// regardless of whether it's reached in-process or over an RPC plugin.
type Collaborator interface {
	// Perform runs the heuristic for input and returns its textual result.
	Perform(ctx context.Context, input map[string]string) (string, error)
}

// Handshake is the go-plugin handshake config shared by host and client.
var Handshake = hplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "GROVE_COLLABORATOR_PLUGIN",
	MagicCookieValue: "grove",
}

// PluginMap maps subjects to their go-plugin Plugin implementations.
func PluginMap() map[string]hplugin.Plugin {
	m := make(map[string]hplugin.Plugin, len(allSubjects))
	for _, s := range allSubjects {
		m[string(s)] = &rpcPlugin{}
	}
	return m
}

var allSubjects = []Subject{
	SubjectDetectProjectType,
	SubjectDraftCommit,
	SubjectRenderClaudeMD,
	SubjectContainerSetup,
}

// rpcPlugin adapts Collaborator to go-plugin's net/rpc plugin interface.
type rpcPlugin struct {
	Impl Collaborator
}

func (p *rpcPlugin) Server(*hplugin.MuxBroker) (interface{}, error) {
	return &rpcServer{impl: p.Impl}, nil
}

func (p *rpcPlugin) Client(_ *hplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &rpcClient{client: c}, nil
}

type performArgs struct {
	Input map[string]string
}

type performReply struct {
	Result string
}

type rpcServer struct {
	impl Collaborator
}

func (s *rpcServer) Perform(args performArgs, reply *performReply) error {
	result, err := s.impl.Perform(context.Background(), args.Input)
	if err != nil {
		return err
	}
	reply.Result = result
	return nil
}

// rpcClient is the client-side stub returned to the host process; it
// implements Collaborator over net/rpc.
type rpcClient struct {
	client *rpc.Client
}

func (c *rpcClient) Perform(_ context.Context, input map[string]string) (string, error) {
	var reply performReply
	if err := c.client.Call("Plugin.Perform", performArgs{Input: input}, &reply); err != nil {
		return "", err
	}
	return reply.Result, nil
}
