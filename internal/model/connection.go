package model

// ConnID is the opaque, process-unique identity of one transport session
type ConnID string
