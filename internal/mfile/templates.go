package mfile

import "text/template"

const confunTemplate = `function [c, ceq, DC, DCeq] = confun(x)
% Nonlinear inequality constraints
c = [
{{- range .C}}
    {{.}}
{{- end}}
{{- if .Positivity}}
    -x
{{- end}}
    ];

ceq = [
{{- range .Ceq}}
      {{.}}
{{- end}}
      ];
{{- if .Gradients}}
if nargout > 2
    DC = [
{{- if .DC}}
          {{.DC}}
{{- end}}
         ]';
    DCeq = [
{{- if .DCeq}}
            {{.DCeq}}
{{- end}}
           ]';
end
{{- end}}
`

const objfunTemplate = `function [f, gradf] = objfun(x)
f = {{.F}};
{{- if .Gradients}}
if nargout > 1
    gradf  = [{{.Gradf}}];
end
{{- end}}
`

const mainTemplate = `{{.X0}}
options = optimoptions('fmincon');
options.Algorithm = '{{.Algorithm}}';
options.MaxFunEvals = Inf;
options.MaxIter = 100000;
options.SpecifyObjectiveGradient = {{.GradObj}};
options.SpecifyConstraintGradient = {{.GradConstr}};
options.CheckGradients = true;
tic;
[x,fval, exitflag, output] = ...
fmincon(@objfun,x0,[],[],[],[],[],[],@confun,options);
elapsed = toc;
fid = fopen('elapsed.txt', 'w');
fprintf(fid, '%.1f', elapsed);
fclose(fid);
fid = fopen('iterations.txt', 'w');
fprintf(fid, '%d', output.iterations);
fclose(fid);
fid = fopen('cost.txt', 'w');
fprintf(fid, '%.5g', {{.Fval}});
if exitflag == -2
    fprintf(fid, '(i)');
end
if exitflag == 0
    fprintf(fid, '(e)');
end
fclose(fid);
fid = fopen('solution.txt', 'w');
fid2 = fopen('initialguess.txt', 'w');
for i = 1:numel(x)
    fprintf(fid, '%.4g\n', {{.Solval}});
    fprintf(fid2, '%.3g\n', x0(i));
end
fclose(fid);
fclose(fid2);
{{- if .LogSpace}}
fid = fopen('logsolution.txt', 'w');
for i = 1:numel(x)
    fprintf(fid, '%.3g\n', x(i));
end
fclose(fid);
{{- end}}
`

const lookupTemplate = `{{range .}}{{.}}
{{end}}`

var (
	confunTmpl = template.Must(template.New(ConfunFile).Parse(confunTemplate))
	objfunTmpl = template.Must(template.New(ObjfunFile).Parse(objfunTemplate))
	mainTmpl   = template.Must(template.New(MainFile).Parse(mainTemplate))
	lookupTmpl = template.Must(template.New(LookupFile).Parse(lookupTemplate))
)
