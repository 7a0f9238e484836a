package search

import (
	"bytes"
	"context"
	"io"
)

// ESSearcher Elasticsearch 搜索接口，用于抽象 ES 客户端
type ESSearcher interface {
	// DoSearch 执行搜索请求并返回响应
	DoSearch(ctx context.Context, index string, queryJSON []byte) (*ESResponse, error)
}

// ESResponse Elasticsearch 搜索响应
type ESResponse struct {
	IsError bool
	Body    io.ReadCloser
	String  string
}

// realESSearcher 真实 ES 客户端的适配器
type realESSearcher struct {
	doSearch func(ctx context.Context, index string, body io.Reader) (*ESResponseImpl, error)
}

// ESResponseImpl ES 响应实现（兼容 go-elasticsearch）
type ESResponseImpl struct {
	isError bool
	body    io.ReadCloser
	str     string
}

func (r *ESResponseImpl) IsError() bool       { return r.isError }
func (r *ESResponseImpl) Body() io.ReadCloser { return r.body }
func (r *ESResponseImpl) String() string      { return r.str }

// newRealESSearcher 创建真实 ES 搜索器
func newRealESSearcher(doSearch func(ctx context.Context, index string, body io.Reader) (*ESResponseImpl, error)) ESSearcher {
	return &realESSearcher{doSearch: doSearch}
}

func (r *realESSearcher) DoSearch(ctx context.Context, index string, queryJSON []byte) (*ESResponse, error) {
	resp, err := r.doSearch(ctx, index, bytes.NewReader(queryJSON))
	if err != nil {
		return nil, err
	}
	return &ESResponse{
		IsError: resp.IsError(),
		Body:    resp.Body(),
		String:  resp.String(),
	}, nil
}
