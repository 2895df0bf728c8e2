// Package http implements HTTP request handlers for the SessionPulse web
// service. It provides a thin layer between HTTP transport and business
// logic, following the clean architecture principle of keeping handlers
// focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details specification:
//
//	{
//	    "type": "/errors/dataset/missing-columns",
//	    "title": "Required Columns Not Found",
//	    "status": 400,
//	    "detail": "no session id column among [foo bar]",
//	    "instance": "/api/analysis/success"
//	}
//
// # Testing
//
// Handlers are tested using httptest:
//
//	- Real service instances with in-memory state
//	- Test various HTTP scenarios
//	- Verify error responses
package http
