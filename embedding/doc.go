// Package embedding resolves which embedding model to use and hides model
// failures from the rest of the system.
//
// A Resolver tries, in order, the model that last succeeded, the configured
// model, the configured model's known alternate, and finally every
// embedding-capable model the provider advertises. The first model that
// answers becomes sticky for later calls. When nothing answers, Embed
// returns no vectors and no error; LastError explains what went wrong.
package embedding
