// Package registry is a thread-safe generic name-to-item map.
//
// pkg/plugin is the sole user: a Registry[Collaborator] holds whichever
// hashicorp/go-plugin client stubs have been launched for a Subject, so
// Resolve can prefer an external collaborator over the in-process
// fallback stub.
//
//	external := registry.New[Collaborator]()
//	if err := external.Register(string(subject), client); err != nil {
//	    return err
//	}
//
//	if c, ok := external.Get(string(subject)); ok {
//	    return c
//	}
//
// All operations are safe for concurrent use.
package registry
