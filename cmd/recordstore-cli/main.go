package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"

	"github.com/carlmjohnson/requests"
	log "github.com/sirupsen/logrus"

	"github.com/yowenter/recordstore/pkg/types"
)

var server = flag.String("server", "http://127.0.0.1:8080", "record store server address")

// apiResponse covers every envelope the server returns, success or not.
type apiResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Data      json.RawMessage   `json:"data"`
	Count     int               `json:"count"`
	Stats     *types.StoreStats `json:"stats"`
	Timestamp string            `json:"timestamp"`
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch args[0] {
	case "list":
		err = runList(ctx)
	case "create":
		if len(args) != 3 {
			usage()
			os.Exit(2)
		}
		err = runCreate(ctx, args[1], args[2])
	case "update":
		if len(args) != 3 {
			usage()
			os.Exit(2)
		}
		err = runUpdate(ctx, args[1], args[2])
	case "delete":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		err = runDelete(ctx, args[1])
	case "clear":
		err = runClear(ctx)
	case "stats":
		err = runStats(ctx)
	case "health":
		err = runHealth(ctx)
	case "export":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		err = runExport(ctx, args[1])
	case "import":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		err = runImport(ctx, args[1])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Errorf("%v failed %v", args[0], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: recordstore-cli [-server URL] COMMAND

commands:
  list                print all records
  create KEY VALUE    create or overwrite a record
  update KEY VALUE    update the value of an existing record
  delete KEY          delete a record
  clear               delete all records
  stats               print store statistics
  health              check the server
  export FILE         write all records to a json file
  import FILE         create records from a json file
`)
}

func apiCall(ctx context.Context, rb *requests.Builder) (*apiResponse, error) {
	var resp apiResponse
	err := rb.
		CheckStatus(http.StatusOK, http.StatusCreated, http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.New(resp.Error)
	}
	return &resp, nil
}

func recordPath(key string) string {
	return "/api/data/" + url.PathEscape(key)
}

func runList(ctx context.Context) error {
	resp, err := apiCall(ctx, requests.URL(*server).Path("/api/data"))
	if err != nil {
		return err
	}
	var records []*types.Record
	if err := json.Unmarshal(resp.Data, &records); err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Printf("%s\t%s\t%s\n", rec.Key, rec.Value, rec.Timestamp)
	}
	fmt.Printf("%d records\n", resp.Count)
	return nil
}

func runCreate(ctx context.Context, key, value string) error {
	req := &types.CreateRecordReq{Key: key, Value: value}
	resp, err := apiCall(ctx, requests.URL(*server).Path("/api/data").Method(http.MethodPost).BodyJSON(req))
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}

func runUpdate(ctx context.Context, key, value string) error {
	req := &types.UpdateRecordReq{Value: value}
	resp, err := apiCall(ctx, requests.URL(*server).Path(recordPath(key)).Method(http.MethodPut).BodyJSON(req))
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}

func runDelete(ctx context.Context, key string) error {
	resp, err := apiCall(ctx, requests.URL(*server).Path(recordPath(key)).Method(http.MethodDelete))
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}

func runClear(ctx context.Context) error {
	resp, err := apiCall(ctx, requests.URL(*server).Path("/api/data").Method(http.MethodDelete))
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}

func runStats(ctx context.Context) error {
	resp, err := apiCall(ctx, requests.URL(*server).Path("/api/stats"))
	if err != nil {
		return err
	}
	if resp.Stats == nil {
		return errors.New("no stats in response")
	}
	fmt.Printf("records: %d\n", resp.Stats.Count)
	fmt.Printf("storage: %s (%d bytes)\n", resp.Stats.StorageSizeFormatted, resp.Stats.StorageSize)
	return nil
}

func runHealth(ctx context.Context) error {
	resp, err := apiCall(ctx, requests.URL(*server).Path("/api/health"))
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", resp.Message, resp.Timestamp)
	return nil
}

func runExport(ctx context.Context, path string) error {
	resp, err := apiCall(ctx, requests.URL(*server).Path("/api/data"))
	if err != nil {
		return err
	}
	var records []*types.Record
	if err := json.Unmarshal(resp.Data, &records); err != nil {
		return err
	}
	data, err := types.MarshalStore(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %d records to %s\n", len(records), path)
	return nil
}

func runImport(ctx context.Context, path string) error {
	values, err := readImportFile(path)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	imported := 0
	for _, key := range keys {
		req := &types.CreateRecordReq{Key: key, Value: values[key]}
		_, err := apiCall(ctx, requests.URL(*server).Path("/api/data").Method(http.MethodPost).BodyJSON(req))
		if err != nil {
			log.Errorf("import record `%s` err %v", key, err)
			continue
		}
		imported++
	}
	fmt.Printf("imported %d/%d records\n", imported, len(values))
	if imported == 0 && len(values) > 0 {
		return errors.New("no record imported")
	}
	return nil
}

// readImportFile accepts either a flat object of key -> value strings or
// a store document as written by export.
func readImportFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(raw))
	for key, rv := range raw {
		var s string
		if err := json.Unmarshal(rv, &s); err == nil {
			values[key] = s
			continue
		}
		var sr types.StoredRecord
		if err := json.Unmarshal(rv, &sr); err != nil {
			return nil, fmt.Errorf("unsupported value for key `%s`", key)
		}
		values[key] = sr.Value
	}
	return values, nil
}
