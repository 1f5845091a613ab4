package ipc

import "context"

// Request names a command and its string arguments. Args may be absent on the
// wire; an empty map is sent as {} and a nil one as null.
type Request struct {
	Name string            `json:"name"`
	Args map[string]string `json:"args"`
}

// Response reports the outcome of one command.
type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// OK builds a successful Response.
func OK(message string) Response {
	return Response{Status: true, Message: message}
}

// Fail builds a failed Response.
func Fail(message string) Response {
	return Response{Status: false, Message: message}
}

// Handler answers one request.
type Handler interface {
	Handle(ctx context.Context, req Request) Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}
