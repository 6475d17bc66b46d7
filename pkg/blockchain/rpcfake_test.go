package blockchain

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// fakeRPC is a minimal JSON-RPC endpoint standing in for a node. It answers
// the liveness check and the transaction envelope queries, records submitted
// raw transactions, reports every receipt as pending, and serves canned
// eth_call results keyed by function selector.
type fakeRPC struct {
	mu           sync.Mutex
	raw          []string          // submitted raw transactions, hex
	returns      map[string]string // function selector (hex) -> return data (hex)
	failEstimate bool
}

func newFakeRPC(t *testing.T) (*fakeRPC, string) {
	t.Helper()
	f := &fakeRPC{returns: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(srv.Close)
	return f, srv.URL
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// callArgs covers both spellings of the calldata field used by clients.
type callArgs struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Input string `json:"input"`
}

func (f *fakeRPC) handle(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Method {
	case "eth_chainId":
		f.result(w, req.ID, `"0x539"`)
	case "eth_getTransactionCount":
		f.result(w, req.ID, `"0x0"`)
	case "eth_gasPrice":
		f.result(w, req.ID, `"0x3b9aca00"`)
	case "eth_estimateGas":
		if f.failEstimate {
			f.fail(w, req.ID, "execution reverted")
			return
		}
		f.result(w, req.ID, `"0x186a0"`)
	case "eth_sendRawTransaction":
		var raw string
		_ = json.Unmarshal(req.Params[0], &raw)
		f.mu.Lock()
		f.raw = append(f.raw, raw)
		f.mu.Unlock()
		f.result(w, req.ID, `"0x0000000000000000000000000000000000000000000000000000000000000000"`)
	case "eth_getTransactionReceipt":
		f.result(w, req.ID, "null")
	case "eth_call":
		var args callArgs
		_ = json.Unmarshal(req.Params[0], &args)
		data := args.Input
		if data == "" {
			data = args.Data
		}
		if len(data) >= 10 {
			f.mu.Lock()
			ret, ok := f.returns[strings.ToLower(data[:10])]
			f.mu.Unlock()
			if ok {
				f.result(w, req.ID, `"`+ret+`"`)
				return
			}
		}
		f.fail(w, req.ID, "execution reverted")
	default:
		f.fail(w, req.ID, "unsupported method "+req.Method)
	}
}

func (f *fakeRPC) result(w http.ResponseWriter, id json.RawMessage, result string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(id) + `,"result":` + result + `}`))
}

func (f *fakeRPC) fail(w http.ResponseWriter, id json.RawMessage, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(id) + `,"error":{"code":-32000,"message":"` + msg + `"}}`))
}

// serve registers the return data for a view function.
func (f *fakeRPC) serve(selector, ret []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.returns[strings.ToLower(hexutil.Encode(selector))] = hexutil.Encode(ret)
}

// sentRaw returns the i-th submitted raw transaction.
func (f *fakeRPC) sentRaw(t *testing.T, i int) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.raw) {
		t.Fatalf("no raw transaction %d recorded (have %d)", i, len(f.raw))
	}
	return f.raw[i]
}
