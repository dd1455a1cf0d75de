// Package hyperbee is a client for the HyperBee inference API.
//
// One client talks to two backends: the chat service, which answers
// completions, chat completions and model listings, and the pipeline (RAG)
// service, which answers from documents stored under a namespace. Every
// request picks its backend from its namespace:
//
//	client, err := hyperbee.New() // HYPERBEE_API_KEY from the environment
//	if err != nil {
//	    return err
//	}
//
//	// no namespace: chat backend
//	resp, err := client.Chat.Completions.Create(ctx, core.ChatCompletionParams{
//	    Model:    "hive",
//	    Messages: []core.Message{{Role: core.RoleUser, Content: "Hello"}},
//	})
//
//	// namespace: pipeline backend
//	resp, err = client.Chat.Completions.Create(ctx, core.ChatCompletionParams{
//	    Model:     "hive",
//	    Namespace: "handbook",
//	    Messages:  []core.Message{{Role: core.RoleUser, Content: "What is our leave policy?"}},
//	})
//
// # Endpoints
//
// Both backends get an [Endpoint] at construction, holding the resolved
// headers, default query, timeout, retry policy and HTTP client. Endpoints
// are immutable. [Client.SetBaseURLForRequest] marks the endpoint for a
// namespace as active and returns it; the request is then sent on that
// returned endpoint, so concurrent chat and pipeline calls on one client
// never redirect each other.
//
// # Derived clients
//
// [Client.WithOptions] builds a new client from the current configuration
// plus overrides, running the same construction steps as [New]:
//
//	traced, err := client.WithOptions(
//	    hyperbee.WithDefaultHeaders(map[string]string{"X-Trace": "on"}),
//	    hyperbee.WithMaxRetries(5),
//	)
//
// WithDefaultHeaders merges and SetDefaultHeaders replaces; passing both
// fails with core.ErrConfiguration. The same holds for the query options.
//
// # Response shapes
//
// Every resource returns decoded values. [Client.WithRawResponse] returns
// the body bytes with status and headers, and [Client.WithStreamingResponse]
// returns the body unread. CreateStream methods decode server-sent events
// into a [core.Stream].
//
// # Async
//
// [NewAsync] returns an [AsyncClient] whose methods start the call on a
// goroutine and return a [Future].
package hyperbee
