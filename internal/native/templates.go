package native

const headerText = `#ifndef {{.Guard}}
#define {{.Guard}}

#include <GLES3/gl3.h>
#include <stdint.h>

#define {{.Guard}}_PARAMS_SIZE {{.ParamsSize}}

typedef struct {{.Prefix}}_Context {
    GLuint vertShader;
    GLuint program;
{{- range .Kernels}}
    GLuint {{.Field}};
{{- end}}
{{- range .Values}}
    {{.CType}} *value_{{.Index}};
{{- end}}
} {{.Prefix}}_Context;

/* Implemented by the embedder. */
void {{.Prefix}}_logError(const char *message);

void {{.Prefix}}_bind({{.Prefix}}_Context *ctx, char *params);
int {{.Prefix}}_init({{.Prefix}}_Context *ctx);
void {{.Prefix}}_release({{.Prefix}}_Context *ctx);

#endif
`

const sourceText = `#include <stdlib.h>
#include <string.h>

#include "{{.HeaderName}}"

static const char *{{.Prefix}}_vertSource = "{{.VertexLiteral}}";
{{- range .Kernels}}
static const char *{{$.Prefix}}_fragSource_{{.Index}} = "{{.Literal}}";
{{- end}}

static GLuint {{.Prefix}}_compileShader(GLenum type, const char *source) {
    GLint isCompiled = 0;
    GLint length = (GLint) strlen(source);
    GLuint shader = glCreateShader(type);

    glShaderSource(shader, 1, &source, &length);
    glCompileShader(shader);
    glGetShaderiv(shader, GL_COMPILE_STATUS, &isCompiled);
    if (isCompiled == GL_FALSE) {
        GLint maxLength = 0;
        glGetShaderiv(shader, GL_INFO_LOG_LENGTH, &maxLength);
        char *log = malloc(maxLength);
        glGetShaderInfoLog(shader, maxLength, &maxLength, log);
        {{.Prefix}}_logError(log);
        free(log);
        glDeleteShader(shader);
        return 0;
    }
    return shader;
}

void {{.Prefix}}_bind({{.Prefix}}_Context *ctx, char *params) {
{{- range .Values}}
    ctx->value_{{.Index}} = ({{.CType}} *) &params[{{.Offset}}];
{{- end}}
}

int {{.Prefix}}_init({{.Prefix}}_Context *ctx) {
    GLint isLinked = 0;

    ctx->program = 0;
{{- range .Kernels}}
    ctx->{{.Field}} = 0;
{{- end}}

    ctx->vertShader = {{.Prefix}}_compileShader(GL_VERTEX_SHADER, {{.Prefix}}_vertSource);
    if (ctx->vertShader == 0) {
        {{.Prefix}}_release(ctx);
        return -1;
    }
{{- range .Kernels}}

    ctx->{{.Field}} = {{$.Prefix}}_compileShader(GL_FRAGMENT_SHADER, {{$.Prefix}}_fragSource_{{.Index}});
    if (ctx->{{.Field}} == 0) {
        {{$.Prefix}}_release(ctx);
        return -1;
    }
{{- end}}

    ctx->program = glCreateProgram();
    glAttachShader(ctx->program, ctx->vertShader);
{{- range .Kernels}}
    glAttachShader(ctx->program, ctx->{{.Field}});
{{- end}}
    glLinkProgram(ctx->program);
    glGetProgramiv(ctx->program, GL_LINK_STATUS, &isLinked);
    if (isLinked == GL_FALSE) {
        GLint maxLength = 0;
        glGetProgramiv(ctx->program, GL_INFO_LOG_LENGTH, &maxLength);
        char *log = malloc(maxLength);
        glGetProgramInfoLog(ctx->program, maxLength, &maxLength, log);
        {{.Prefix}}_logError(log);
        free(log);
        {{.Prefix}}_release(ctx);
        return -1;
    }
    return 0;
}

void {{.Prefix}}_release({{.Prefix}}_Context *ctx) {
    glDeleteProgram(ctx->program);
    glDeleteShader(ctx->vertShader);
{{- range .Kernels}}
    glDeleteShader(ctx->{{.Field}});
{{- end}}
    ctx->program = 0;
    ctx->vertShader = 0;
{{- range .Kernels}}
    ctx->{{.Field}} = 0;
{{- end}}
}
`
